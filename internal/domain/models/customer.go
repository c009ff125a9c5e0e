package models

import "strings"

// ContactChannel способ связи с клиентом (закрытый список)
type ContactChannel string

const (
	ChannelInstagram ContactChannel = "Instagram"
	ChannelWhatsApp  ContactChannel = "WhatsApp"
	ChannelOther     ContactChannel = "Otro"
)

// Channels возвращает допустимые способы связи в порядке отображения
func Channels() []ContactChannel {
	return []ContactChannel{ChannelInstagram, ChannelWhatsApp, ChannelOther}
}

func (c ContactChannel) Valid() bool {
	for _, ch := range Channels() {
		if c == ch {
			return true
		}
	}
	return false
}

// CustomerInfo данные клиента из первого блока формы
type CustomerInfo struct {
	Name    string         `json:"name"`
	Surname string         `json:"surname"`
	Channel ContactChannel `json:"channel"`
	Handle  string         `json:"handle"` // usuario de Instagram o teléfono
	Email   string         `json:"email"`
}

// Trimmed возвращает копию без пробелов по краям свободных полей
func (c CustomerInfo) Trimmed() CustomerInfo {
	return CustomerInfo{
		Name:    strings.TrimSpace(c.Name),
		Surname: strings.TrimSpace(c.Surname),
		Channel: c.Channel,
		Handle:  strings.TrimSpace(c.Handle),
		Email:   strings.TrimSpace(c.Email),
	}
}
