package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Organization{},
		&Department{},
		&Team{},
		&Invite{},
		&Objective{},
		&KeyResult{},
		&OTP{},
	}
}
