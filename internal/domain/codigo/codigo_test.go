package codigo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/internal/domain/codigo"
)

func fecha(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Vector exacto: lote "A1", caduca 2025-06-01, recibido 2025-05-01.
// Si alguien cambia el separador, el orden o el formato de fecha, este test
// rompe antes de que se generen códigos incompatibles con las etiquetas ya impresas.
func TestGenerar_VectorExacto(t *testing.T) {
	code, err := codigo.Generar("A1", fecha(2025, time.June, 1), fecha(2025, time.May, 1))
	require.NoError(t, err)
	assert.Equal(t, "A1-20250601-20250501", code)
}

func TestGenerar_Determinista(t *testing.T) {
	c1, err1 := codigo.Generar("LT-88", fecha(2026, time.January, 15), fecha(2025, time.December, 30))
	c2, err2 := codigo.Generar("LT-88", fecha(2026, time.January, 15), fecha(2025, time.December, 30))
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, c1, c2, "el mismo triple debe regenerar siempre el mismo código")
}

func TestGenerar_NormalizaLote(t *testing.T) {
	tests := []struct {
		name string
		lote string
		want string
	}{
		{"minúsculas a mayúsculas", "a1b2", "A1B2-20250601-20250501"},
		{"espacios internos fuera", "a1 b2", "A1B2-20250601-20250501"},
		{"espacios en extremos fuera", "  a1  ", "A1-20250601-20250501"},
		{"tildes plegadas", "añejo-01", "ANEJO-01-20250601-20250501"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codigo.Generar(tt.lote, fecha(2025, time.June, 1), fecha(2025, time.May, 1))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Triples distintos deben producir códigos distintos: dos recepciones del mismo
// lote y caducidad en días distintos conviven como lotes separados.
func TestGenerar_InyectivoSobreElCorpus(t *testing.T) {
	vistos := map[string]bool{}
	lotes := []string{"A1", "A2", "B1"}
	caducidades := []time.Time{fecha(2025, time.June, 1), fecha(2025, time.July, 1)}
	recibidos := []time.Time{fecha(2025, time.May, 1), fecha(2025, time.May, 2)}
	for _, l := range lotes {
		for _, c := range caducidades {
			for _, r := range recibidos {
				code, err := codigo.Generar(l, c, r)
				require.NoError(t, err)
				assert.False(t, vistos[code], "código repetido para triple distinto: %s", code)
				vistos[code] = true
			}
		}
	}
}

func TestGenerar_EntradaInvalida(t *testing.T) {
	_, err := codigo.Generar("", fecha(2025, time.June, 1), fecha(2025, time.May, 1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = codigo.Generar("   ", fecha(2025, time.June, 1), fecha(2025, time.May, 1))
	assert.ErrorIs(t, err, domain.ErrValidation, "solo espacios equivale a lote vacío")

	_, err = codigo.Generar("A1", time.Time{}, fecha(2025, time.May, 1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = codigo.Generar("A1", fecha(2025, time.June, 1), time.Time{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
