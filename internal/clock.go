package internal

import "time"

type Timer interface {
	Now() time.Time
}

type RealTime struct{}

func NewRealTime() *RealTime { return &RealTime{} }

func (r *RealTime) Now() time.Time { return time.Now() }
