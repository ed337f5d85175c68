package db

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ---- Events ----

func (queries *Queries) CreateEvent(ctx context.Context, event *Event) error {
	event.Shortkey = strings.ToUpper(event.Shortkey)
	err := queries.DB.WithContext(ctx).Create(event).Error
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrShortkeyTaken
	}
	if err == nil {
		queries.invalidateEventList(ctx)
	}
	return err
}

func (queries *Queries) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := queries.DB.WithContext(ctx).
		Preload("Showtimes").
		Preload("Images").
		Preload("Form.Fields.Options").
		Where("id = ?", id).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

const eventListCacheKey = "events:list"

// List all events, newest first. The listing is the hottest read of the
// catalog, so it is served from cache between mutations.
func (queries *Queries) ListEvents(ctx context.Context) ([]Event, error) {
	if queries.Cache != nil {
		if cached, err := queries.GetCache(ctx, eventListCacheKey); err == nil {
			var events []Event
			if err := json.Unmarshal([]byte(cached), &events); err == nil {
				return events, nil
			}
		}
	}

	var events []Event
	if err := queries.DB.WithContext(ctx).Order("date_created DESC").Find(&events).Error; err != nil {
		return nil, err
	}

	if queries.Cache != nil {
		if raw, err := json.Marshal(events); err == nil {
			queries.SetCache(ctx, eventListCacheKey, string(raw), 5*time.Minute)
		}
	}
	return events, nil
}

func (queries *Queries) invalidateEventList(ctx context.Context) {
	if queries.Cache != nil {
		queries.Cache.Del(ctx, eventListCacheKey)
	}
}

// Update event attributes. The shortkey may only change while no ticket
// references the event; afterwards it is part of every issued ticket code
// and must stay put.
func (queries *Queries) UpdateEvent(ctx context.Context, event *Event) error {
	return queries.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Event
		if err := tx.Where("id = ?", event.ID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		event.Shortkey = strings.ToUpper(event.Shortkey)
		if event.Shortkey != current.Shortkey {
			var tickets int64
			if err := tx.Model(&Ticket{}).Where("event_id = ?", event.ID).Count(&tickets).Error; err != nil {
				return err
			}
			if tickets > 0 {
				return ErrShortkeyImmutable
			}
		}

		err := tx.Model(&Event{}).Where("id = ?", event.ID).Updates(map[string]any{
			"title":         event.Title,
			"description":   event.Description,
			"shortkey":      event.Shortkey,
			"thumbnail_url": event.ThumbnailURL,
		}).Error
		if err != nil && strings.Contains(err.Error(), "duplicate key") {
			return ErrShortkeyTaken
		}
		if err == nil {
			queries.invalidateEventList(ctx)
		}
		return err
	})
}

// Delete an event and everything it owns (showtimes, ticket classes, form,
// images cascade). Blocked while tickets reference the event: tickets are
// owned by the order flow, not the catalog.
func (queries *Queries) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return queries.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tickets int64
		if err := tx.Model(&Ticket{}).Where("event_id = ?", id).Count(&tickets).Error; err != nil {
			return err
		}
		if tickets > 0 {
			return ErrEventHasTickets
		}

		result := tx.Where("id = ?", id).Delete(&Event{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}
		queries.invalidateEventList(ctx)
		return nil
	})
}

// ---- Showtimes ----

func (queries *Queries) CreateShowtime(ctx context.Context, showtime *Showtime) error {
	if !showtime.EndTime.After(showtime.StartTime) {
		return ErrInvalidTimeRange
	}
	return queries.DB.WithContext(ctx).Create(showtime).Error
}

func (queries *Queries) GetShowtime(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	var showtime Showtime
	err := queries.DB.WithContext(ctx).
		Preload("TicketClasses").
		Where("id = ?", id).
		First(&showtime).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShowtimeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &showtime, nil
}

func (queries *Queries) UpdateShowtime(ctx context.Context, showtime *Showtime) error {
	if !showtime.EndTime.After(showtime.StartTime) {
		return ErrInvalidTimeRange
	}
	result := queries.DB.WithContext(ctx).
		Model(&Showtime{}).
		Where("id = ? AND event_id = ?", showtime.ID, showtime.EventID).
		Updates(map[string]any{
			"start_time": showtime.StartTime,
			"end_time":   showtime.EndTime,
			"location":   showtime.Location,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}

func (queries *Queries) DeleteShowtime(ctx context.Context, eventID, id uuid.UUID) error {
	result := queries.DB.WithContext(ctx).
		Where("id = ? AND event_id = ?", id, eventID).
		Delete(&Showtime{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}

// ---- Ticket classes ----

func (queries *Queries) CreateTicketClass(ctx context.Context, class *TicketClass) error {
	return queries.DB.WithContext(ctx).Create(class).Error
}

func (queries *Queries) GetTicketClass(ctx context.Context, id uuid.UUID) (*TicketClass, error) {
	var class TicketClass
	err := queries.DB.WithContext(ctx).Where("id = ?", id).First(&class).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (queries *Queries) UpdateTicketClass(ctx context.Context, class *TicketClass) error {
	result := queries.DB.WithContext(ctx).
		Model(&TicketClass{}).
		Where("id = ?", class.ID).
		Updates(map[string]any{
			"name":         class.Name,
			"price":        class.Price,
			"max_quantity": class.MaxQuantity,
			"active":       class.Active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketClassNotFound
	}
	return nil
}

// Delete a ticket class. Blocked while any ticket references it
func (queries *Queries) DeleteTicketClass(ctx context.Context, id uuid.UUID) error {
	return queries.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tickets int64
		if err := tx.Model(&Ticket{}).Where("ticket_class_id = ?", id).Count(&tickets).Error; err != nil {
			return err
		}
		if tickets > 0 {
			return ErrClassInUse
		}

		result := tx.Where("id = ?", id).Delete(&TicketClass{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTicketClassNotFound
		}
		return nil
	})
}

// ---- Forms ----

func (queries *Queries) GetFormByEvent(ctx context.Context, eventID uuid.UUID) (*Form, error) {
	var form Form
	err := queries.DB.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("form_fields.position") }).
		Preload("Fields.Options", func(db *gorm.DB) *gorm.DB { return db.Order("field_options.position") }).
		Where("event_id = ?", eventID).
		First(&form).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// Replace the event's form definition wholesale. An event has at most one
// form, so a PUT style replace keeps field ordering simple.
func (queries *Queries) ReplaceForm(ctx context.Context, form *Form) error {
	return queries.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", form.EventID).Delete(&Form{}).Error; err != nil {
			return err
		}
		return tx.Create(form).Error
	})
}

// ---- Users ----

func (queries *Queries) CreateUser(ctx context.Context, user *User) error {
	err := queries.DB.WithContext(ctx).Create(user).Error
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrEmailRegistered
	}
	return err
}

func (queries *Queries) UserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := queries.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (queries *Queries) UserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := queries.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Assign a staff user to an event. A user can staff only one event at a
// time, so an existing assignment to a different event is a conflict.
func (queries *Queries) AssignStaff(ctx context.Context, userID, eventID uuid.UUID) error {
	return queries.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.Role != RoleStaff {
			return ErrForbidden
		}
		if user.StaffEventID != nil && *user.StaffEventID != eventID {
			return ErrStaffAssigned
		}

		var event Event
		if err := tx.Where("id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		return tx.Model(&User{}).Where("id = ?", userID).Update("staff_event_id", eventID).Error
	})
}

func (queries *Queries) CreateEventImage(ctx context.Context, image *EventImage) error {
	return queries.DB.WithContext(ctx).Create(image).Error
}
