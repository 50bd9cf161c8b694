package product

import "fmt"

// ListCachePattern matches every cached product list of an establishment.
// Anything that changes stock_actuel must clear it as well as catalog writes.
func ListCachePattern(establishmentID string) string {
	return fmt.Sprintf("produits:list:%s:*", establishmentID)
}
