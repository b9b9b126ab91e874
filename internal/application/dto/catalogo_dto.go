package dto

// ProductResponse producto del catálogo en respuestas.
type ProductResponse struct {
	ID     string `json:"id"`
	Name   string `json:"nombre"`
	Brand  string `json:"marca,omitempty"`
	Format string `json:"formato,omitempty"`
}

// UnitResponse unidad organizativa en respuestas.
type UnitResponse struct {
	ID      string `json:"id"`
	Name    string `json:"nombre"`
	Address string `json:"direccion,omitempty"`
}
