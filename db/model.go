package db

import (
	"time"

	"github.com/google/uuid"
)

// Share fields of all models: ID, created at and updated at timestamp
type Model struct {
	ID          uuid.UUID `gorm:"type:uuid;not null;default:gen_random_uuid();primaryKey" json:"id"`
	DateCreated time.Time `gorm:"not null;default:now()" json:"created_at"`
	DateUpdated time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func NewModel() Model {
	return Model{
		ID:          uuid.New(),
		DateCreated: time.Now(),
		DateUpdated: time.Now(),
	}
}

// Enum defined
type Role string

type TicketStatus string

type FieldType string

// Constant defined
const (
	// Role
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"

	// Ticket lifecycle.
	// PENDING_PAYMENT -> PAID -> CHECKED_IN
	// PENDING_PAYMENT -> CANCELLED (terminal)
	// All other transitions are illegal.
	TicketPendingPayment TicketStatus = "PENDING_PAYMENT"
	TicketPaid           TicketStatus = "PAID"
	TicketCancelled      TicketStatus = "CANCELLED"
	TicketCheckedIn      TicketStatus = "CHECKED_IN"

	// Form field types
	FieldShortAnswer  FieldType = "short_answer"
	FieldLongAnswer   FieldType = "long_answer"
	FieldDate         FieldType = "date"
	FieldSingleChoice FieldType = "single_choice"
	FieldMultiChoice  FieldType = "multi_choice"
)

// User of the system, consist of 3 roles:
// 1. user (who buys tickets)
// 2. staff: event's check-in staff. A staff user is assigned to at most one
// event at a time via StaffEventID
// 3. admin: platform's administrator
type User struct {
	Model
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	Email        string     `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Password     string     `gorm:"type:varchar(60);not null" json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:user" json:"role"`
	StaffEventID *uuid.UUID `gorm:"type:uuid;index" json:"staff_event_id,omitempty"`

	// Relationships
	StaffEvent *Event   `gorm:"foreignKey:StaffEventID" json:"staff_event,omitempty"`
	Tickets    []Ticket `gorm:"foreignKey:OwnerID" json:"tickets,omitempty"`
}

// Event information.
// Shortkey is a short human-readable unique identifier, used as the prefix of
// every ticket code of the event. It is immutable once any ticket references
// the event (changing it would break ticket-code traceability).
// An event owns its showtimes, images and form: deleting the event cascades
// to them. Deletion is blocked while any ticket references the event.
type Event struct {
	Model
	Title        string `gorm:"type:varchar(200);not null" json:"title"`
	Description  string `gorm:"type:text;not null" json:"description"`
	Shortkey     string `gorm:"type:varchar(20);not null;uniqueIndex" json:"shortkey"`
	ThumbnailURL string `gorm:"type:varchar" json:"thumbnail_url"`

	// Relationships
	Showtimes     []Showtime    `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"showtimes,omitempty"`
	Images        []EventImage  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Form          *Form         `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"form,omitempty"`
	TicketClasses []TicketClass `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"ticket_classes,omitempty"`
	StaffMembers  []User        `gorm:"foreignKey:StaffEventID" json:"staff_members,omitempty"`
}

// Event gallery image. The binary lives in Cloudinary, the row keeps the URL
type EventImage struct {
	Model
	EventID uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	URL     string    `gorm:"type:varchar;not null" json:"url"`

	// Relationships
	Event Event `gorm:"foreignKey:EventID" json:"event"`
}

// A single occurrence of an event.
// Constraint: end_time > start_time
type Showtime struct {
	Model
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Location  string    `gorm:"type:varchar(200);not null" json:"location"`

	// Relationships
	Event         Event         `gorm:"foreignKey:EventID" json:"event"`
	TicketClasses []TicketClass `gorm:"foreignKey:ShowtimeID;constraint:OnDelete:CASCADE" json:"ticket_classes,omitempty"`
}

// Ticket class: a price tier of a showtime.
// Belongs to exactly one event and exactly one showtime; the showtime must
// belong to the same event (cross-validated on purchase as well).
// MaxQuantity nil means unlimited. Deletion is blocked while any ticket
// references the class.
type TicketClass struct {
	Model
	EventID     uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	ShowtimeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"showtime_id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Price       int64     `gorm:"not null;check:price >= 0" json:"price"`
	MaxQuantity *int      `gorm:"" json:"max_quantity,omitempty"`
	Active      bool      `gorm:"not null;default:true" json:"active"`

	// Relationships
	Event    Event    `gorm:"foreignKey:EventID" json:"event"`
	Showtime Showtime `gorm:"foreignKey:ShowtimeID" json:"showtime"`
	Tickets  []Ticket `gorm:"foreignKey:TicketClassID" json:"tickets,omitempty"`
}

// Custom registration form, at most one per event
type Form struct {
	Model
	EventID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"event_id"`
	Title   string    `gorm:"type:varchar(200)" json:"title"`

	// Relationships
	Event  Event       `gorm:"foreignKey:EventID" json:"event"`
	Fields []FormField `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
}

// A single question of a form. Position defines the display order
type FormField struct {
	Model
	FormID   uuid.UUID `gorm:"type:uuid;not null;index" json:"form_id"`
	Label    string    `gorm:"type:varchar(200);not null" json:"label"`
	Type     FieldType `gorm:"type:varchar(20);not null" json:"type"`
	Required bool      `gorm:"not null;default:false" json:"required"`
	Position int       `gorm:"not null" json:"position"`

	// Relationships
	Form    Form          `gorm:"foreignKey:FormID" json:"form"`
	Options []FieldOption `gorm:"foreignKey:FieldID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// Choice option of a single/multi choice field
type FieldOption struct {
	Model
	FieldID  uuid.UUID `gorm:"type:uuid;not null;index" json:"field_id"`
	Label    string    `gorm:"type:varchar(200);not null" json:"label"`
	Position int       `gorm:"not null" json:"position"`

	// Relationships
	Field FormField `gorm:"foreignKey:FieldID" json:"field"`
}

// Order: one row per purchase, keyed by the numeric order reference we
// hand to the payment gateway. The unique index is what makes an order
// code unusable twice: the row is inserted in the same transaction as the
// ticket batch, so two concurrent purchases racing on the same code cannot
// both commit.
type Order struct {
	Model
	OrderCode int64 `gorm:"not null;uniqueIndex" json:"order_code"`
}

// Ticket: the central mutable entity.
// TicketCode is `{EVENT_SHORTKEY}-{10 uppercase alphanumerics}`, unique
// system-wide and immutable once assigned. OrderCode is the numeric order
// reference issued by us and echoed by the payment gateway; all tickets of
// one purchase share it. FormData stores the buyer's form answers verbatim.
// Either OwnerID is set (registered buyer) or the guest contact fields are.
type Ticket struct {
	Model
	TicketCode    string       `gorm:"type:varchar(40);not null;uniqueIndex" json:"ticket_code"`
	OwnerID       *uuid.UUID   `gorm:"type:uuid;index" json:"owner_id,omitempty"`
	GuestName     string       `gorm:"type:varchar(100)" json:"guest_name,omitempty"`
	GuestEmail    string       `gorm:"type:varchar(100)" json:"guest_email,omitempty"`
	TicketClassID uuid.UUID    `gorm:"type:uuid;not null;index" json:"ticket_class_id"`
	EventID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"event_id"`
	PurchasedAt   time.Time    `gorm:"not null;default:now()" json:"purchased_at"`
	Status        TicketStatus `gorm:"type:varchar(20);not null;default:PENDING_PAYMENT" json:"status"`
	FormData      JSONMap      `gorm:"type:jsonb" json:"form_data,omitempty"`
	OrderCode     int64        `gorm:"not null;index" json:"order_code"`

	// Relationships
	Owner       *User       `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	TicketClass TicketClass `gorm:"foreignKey:TicketClassID" json:"ticket_class"`
	Event       Event       `gorm:"foreignKey:EventID" json:"event"`
}
