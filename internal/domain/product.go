package domain

const (
	ProductCodeInvalidName  = "invalid_name"
	ProductCodeInvalidPrice = "invalid_price"

	msgNameMissing      = "Name is missing"
	msgPriceMissing     = "Price is missing"
	msgProductPublished = "Product was successfully published"
)

// CreateProduct validates a product before it is published. The name is
// checked before the price.
func CreateProduct(in ProductInput) ProductResult {
	if in.Name == "" {
		return ProductResult{
			Error: &ProductError{Code: ProductCodeInvalidName, Message: msgNameMissing},
		}
	}
	if in.Price <= 0 {
		return ProductResult{
			Error: &ProductError{Code: ProductCodeInvalidPrice, Message: msgPriceMissing},
		}
	}
	return ProductResult{Success: true, Message: msgProductPublished}
}
