package request

type GetAssets struct {
	// all, mine or listed
	Filter string `form:"filter"`

	// Owner for the mine filter, defaults to the session address
	Owner string `form:"owner"`

	// Search by id
	Id string `form:"id"`
}

type PreviewTransfer struct {
	To string `form:"to" binding:"required"`
}
