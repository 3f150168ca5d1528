package transfer

type CreateTransferRequest struct {
	ModelID  int64 `json:"model_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,gt=0"`
}

type RejectTransferRequest struct {
	Reason string `json:"reason" binding:"required"`
}
