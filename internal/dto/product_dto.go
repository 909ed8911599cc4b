package dto

type ProductRequest struct {
	Id                   string  `json:"id" validate:"notblank,max=100"`
	Title                string  `json:"title" validate:"notblank"`
	Gender               string  `json:"gender"`
	Price                float64 `json:"price" validate:"gte=0"`
	Description          string  `json:"description"`
	DescriptionGenerated string  `json:"description_generated"`
	Color                string  `json:"color"`
	ImageLink            string  `json:"image_link"`
	Link                 string  `json:"link"`
	Categories           string  `json:"categories"`
}

type ImportProductsRequest struct {
	Collection string           `json:"collection" validate:"max=100"`
	Products   []ProductRequest `json:"products" validate:"required,min=1,max=1000,dive"`
}

type ImportProductsResponse struct {
	Collection string `json:"collection"`
	Imported   int    `json:"imported"`
}

// VectorizeProductMessage is queued for every imported product.
type VectorizeProductMessage struct {
	Collection string `json:"collection"`
	ProductId  string `json:"productId"`
}

type RequeuePendingRequest struct {
	Collection string `json:"collection" validate:"max=100"`
}

type RequeuePendingResponse struct {
	Collection string `json:"collection"`
	Queued     int    `json:"queued"`
}
