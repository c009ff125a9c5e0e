package models

import "time"

// Session состояние формы одного пользователя от открытия до закрытия
type Session struct {
	ID         string       `json:"id"`
	Customer   CustomerInfo `json:"customer"`
	Quantities SizeQuantity `json:"quantities"`
	Details    []UnitDetail `json:"details"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	ExpiresAt  time.Time    `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Clone глубокая копия, чтобы хранилище не делило срезы и мапы с вызывающим кодом
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Quantities != nil {
		out.Quantities = make(SizeQuantity, len(s.Quantities))
		for k, v := range s.Quantities {
			out.Quantities[k] = v
		}
	}
	if s.Details != nil {
		out.Details = make([]UnitDetail, len(s.Details))
		for i, d := range s.Details {
			d.Locations = append([]PrintLocation(nil), d.Locations...)
			out.Details[i] = d
		}
	}
	return &out
}
