package attendee

import "time"

// Attendee は参加者エンティティを表す
// Name / Email / Phone は核内では平文として扱い、永続化境界で暗号化される
type Attendee struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAttendee は新しい参加者を作成する
func NewAttendee(name, email, phone string) *Attendee {
	now := time.Now()
	return &Attendee{
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は参加者の検証を行う
func (a *Attendee) Validate() error {
	if a.Email == "" {
		return ErrEmailRequired
	}
	if a.Name == "" {
		return ErrNameRequired
	}
	return nil
}
