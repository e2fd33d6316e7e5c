package request

type Transfer struct {
	To string `json:"to" binding:"required"`
}

type List struct {
	// Decimal amount of ether, e.g. 0.25
	Price string `json:"price" binding:"required"`
}
