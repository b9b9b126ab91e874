package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotStatus estado cerrado de un lote de inventario. El núcleo solo escribe
// disponible y agotado; reservado, caducado y merma existen en el vocabulario
// histórico y se aceptan al leer.
type LotStatus string

const (
	LotAvailable LotStatus = "disponible"
	LotReserved  LotStatus = "reservado"
	LotDepleted  LotStatus = "agotado"
	LotExpired   LotStatus = "caducado"
	LotWaste     LotStatus = "merma"
)

// Valid indica si el valor viene del vocabulario cerrado.
func (s LotStatus) Valid() bool {
	switch s {
	case LotAvailable, LotReserved, LotDepleted, LotExpired, LotWaste:
		return true
	}
	return false
}

// Active indica si el lote cuenta como stock consumible.
func (s LotStatus) Active() bool {
	return s == LotAvailable || s == LotReserved
}

// ExpiryClass clasificación de caducidad derivada en lectura, nunca persistida.
type ExpiryClass string

const (
	ExpiryOK       ExpiryClass = "vigente"
	ExpirySoon     ExpiryClass = "por_caducar"
	ExpiryExpired  ExpiryClass = "caducado"
	expirySoonDays             = 7
)

// ClassifyExpiry clasifica la fecha de caducidad respecto a hoy: caducado si ya
// pasó, por_caducar si cae dentro de los próximos 7 días, vigente en otro caso.
func ClassifyExpiry(expiry, today time.Time) ExpiryClass {
	e := expiry.Truncate(24 * time.Hour)
	t := today.Truncate(24 * time.Hour)
	if e.Before(t) {
		return ExpiryExpired
	}
	if !e.After(t.AddDate(0, 0, expirySoonDays)) {
		return ExpirySoon
	}
	return ExpiryOK
}

// Lot representa una entrada de inventario: un lote físico recibido, con
// cantidad y caducidad. cantidad_actual es una proyección cacheada del ledger
// de movimientos y debe cuadrar con él en todo momento.
type Lot struct {
	ID         string
	Code       string // codigo_unico derivado, único en todo el sistema
	UnitID     string
	ProductID  string
	LineID     string // pedido_item de origen
	LotNumber  string
	Expiry     time.Time
	ReceivedAt time.Time
	Initial    decimal.Decimal // cantidad_inicial
	Current    decimal.Decimal // cantidad_actual, monótona no creciente
	Status     LotStatus
	Location   string
	ReceivedBy string
	CreatedAt  time.Time

	ProductName string // lookup de solo lectura para render
}

// ExpiryStatus clasifica el lote respecto a la fecha dada (normalmente hoy).
func (l *Lot) ExpiryStatus(today time.Time) ExpiryClass {
	return ClassifyExpiry(l.Expiry, today)
}
