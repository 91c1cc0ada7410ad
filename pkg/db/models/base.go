package models

import "github.com/google/uuid"

// assignID gives rows a client-side id so inserts behave the same on postgres and sqlite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&Customer{},
		&Product{},
		&ProductReview{},
		&Order{},
		&OrderItem{},
		&Banner{},
		&Testimonial{},
		&Notification{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
