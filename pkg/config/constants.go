package config

type BookingStatus string

const (
	Pending    BookingStatus = "pending"
	Confirmed  BookingStatus = "confirmed"
	InProgress BookingStatus = "in_progress"
	Completed  BookingStatus = "completed"
	Cancelled  BookingStatus = "cancelled"
)

type ProviderStatus string

const (
	Available ProviderStatus = "available"
	Busy      ProviderStatus = "busy"
	Offline   ProviderStatus = "offline"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	AuditActionAutoAssign = "auto_assign_provider"
)
