package festival

import "time"

// Status はフェスティバルのライフサイクル状態を表す
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusFinished  Status = "finished"
)

// Festival はフェスティバルエンティティを表す
type Festival struct {
	ID          string
	Name        string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int // 楽観的ロック用
}

// NewFestival は新しいフェスティバルを DRAFT 状態で作成する
func NewFestival(name, description, location string, startDate, endDate time.Time) *Festival {
	now := time.Now()
	return &Festival{
		Name:        name,
		Description: description,
		Location:    location,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
}

// IsPublished は購入・消費を受け付ける状態かを返す
func (f *Festival) IsPublished() bool {
	return f.Status == StatusPublished
}

// ChangeStatus は状態遷移を行う
// 許可される遷移: DRAFT→PUBLISHED、PUBLISHED→CANCELLED、PUBLISHED→FINISHED
func (f *Festival) ChangeStatus(next Status) error {
	if f.Status == next {
		return nil
	}
	allowed := map[Status][]Status{
		StatusDraft:     {StatusPublished, StatusCancelled},
		StatusPublished: {StatusCancelled, StatusFinished},
	}
	for _, s := range allowed[f.Status] {
		if s == next {
			f.Status = next
			f.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrInvalidStatusTransition
}

// Validate はフェスティバルの検証を行う
func (f *Festival) Validate() error {
	if f.Name == "" {
		return ErrFestivalNameRequired
	}
	if f.EndDate.Before(f.StartDate) {
		return ErrInvalidFestivalDates
	}
	return nil
}
