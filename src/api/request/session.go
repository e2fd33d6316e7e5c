package request

type SetSession struct {
	Address string `json:"address" binding:"required"`
}
