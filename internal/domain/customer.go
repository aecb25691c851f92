package domain

import "time"

// MembershipLevel — уровень лояльности покупателя.
type MembershipLevel string

const (
	MembershipBronze   MembershipLevel = "bronze"
	MembershipSilver   MembershipLevel = "silver"
	MembershipGold     MembershipLevel = "gold"
	MembershipPlatinum MembershipLevel = "platinum"
)

// Пороговые значения баллов для уровней лояльности.
const (
	silverThreshold   = 100
	goldThreshold     = 500
	platinumThreshold = 1000
)

// LevelForPoints — чистая функция уровня от накопленных баллов.
// Баллы монотонно растут, поэтому уровень никогда не понижается.
func LevelForPoints(points int64) MembershipLevel {
	switch {
	case points >= platinumThreshold:
		return MembershipPlatinum
	case points >= goldThreshold:
		return MembershipGold
	case points >= silverThreshold:
		return MembershipSilver
	default:
		return MembershipBronze
	}
}

// Customer хранит производные поля лояльности.
// Профиль (имя, email) принадлежит внешнему сервису и здесь денормализован.
type Customer struct {
	ID    string
	Name  string
	Email string
	// LoyaltyPoints — накопленные баллы, неотрицательные и неубывающие.
	LoyaltyPoints int64
	// TotalSpent — накопленные траты в минимальных единицах.
	TotalSpent      int64
	MembershipLevel MembershipLevel
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
