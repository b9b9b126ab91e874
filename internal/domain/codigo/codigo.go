// Package codigo: derivación del código único de lote.
// Formato: LOTE-CADUCIDAD-RECIBIDO, con el lote en mayúsculas sin espacios ni
// tildes y las fechas compactas YYYYMMDD. Función pura y determinista: el mismo
// triple (lote, caducidad, recibido) regenera siempre el mismo código, que es
// la base de la unicidad y permite mostrar un preview antes de confirmar.
package codigo

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/chefmanager/chefmanager-api/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const dateLayout = "20060102"

// quita marcas diacríticas: "LOTE-Ñ" y "LOTE-N" no deben chocar por tildes al teclear
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generar deriva el código único de un lote recibido.
// Falla con domain.ErrValidation si el lote queda vacío tras normalizar o si
// alguna fecha es cero.
func Generar(lote string, caducidad, recibido time.Time) (string, error) {
	normalizado, err := NormalizarLote(lote)
	if err != nil {
		return "", err
	}
	if caducidad.IsZero() {
		return "", fmt.Errorf("fecha de caducidad obligatoria: %w", domain.ErrValidation)
	}
	if recibido.IsZero() {
		return "", fmt.Errorf("fecha de recepción obligatoria: %w", domain.ErrValidation)
	}
	return fmt.Sprintf("%s-%s-%s",
		normalizado,
		caducidad.Format(dateLayout),
		recibido.Format(dateLayout),
	), nil
}

// NormalizarLote pasa el número de lote a mayúsculas, quita tildes y elimina
// todo espacio en blanco. Falla con domain.ErrValidation si queda vacío.
func NormalizarLote(lote string) (string, error) {
	folded, _, err := transform.String(foldDiacritics, lote)
	if err != nil {
		folded = lote
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(folded) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("número de lote obligatorio: %w", domain.ErrValidation)
	}
	return b.String(), nil
}
