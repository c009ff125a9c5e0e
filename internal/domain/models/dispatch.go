package models

import "time"

type DispatchStatus string

const (
	DispatchSent   DispatchStatus = "sent"
	DispatchFailed DispatchStatus = "failed"
)

// Dispatch запись журнала отправки заказа; персональные данные клиента не хранятся
type Dispatch struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id"`
	Units      int            `json:"units"`
	Recipients int            `json:"recipients"`
	Status     DispatchStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
