package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
	"github.com/Thanujadevi/EMPOWERHER/internal/validate"
)

// maxImportCandidates caps how many address book entries are offered.
const maxImportCandidates = 5

// ContactSetup edits the emergency contact list and saves it to the profile.
type ContactSetup struct {
	session  *SessionStore
	contacts model.ContactsProvider
	notifier model.Notifier
	logger   *logger.Logger

	mu     sync.Mutex
	drafts []model.ContactRecord
}

// NewContactSetup starts from the saved contacts, or a single blank entry.
func NewContactSetup(
	session *SessionStore,
	contacts model.ContactsProvider,
	notifier model.Notifier,
	logger *logger.Logger,
) *ContactSetup {
	c := &ContactSetup{
		session:  session,
		contacts: contacts,
		notifier: notifier,
		logger:   logger,
	}
	if user, ok := session.CurrentUser(); ok && len(user.EmergencyContacts) > 0 {
		c.drafts = append([]model.ContactRecord(nil), user.EmergencyContacts...)
	} else {
		c.drafts = []model.ContactRecord{{}}
	}
	return c
}

// Contacts returns the entries being edited.
func (c *ContactSetup) Contacts() []model.ContactRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ContactRecord(nil), c.drafts...)
}

func limitError() error {
	return model.NewUserError(model.ErrValidation,
		fmt.Sprintf("You can only add up to %d emergency contacts.", model.MaxEmergencyContacts),
		model.ErrContactLimit)
}

// Add appends a blank entry.
func (c *ContactSetup) Add() error {
	return c.append(model.ContactRecord{})
}

func (c *ContactSetup) append(record model.ContactRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.drafts) >= model.MaxEmergencyContacts {
		return limitError()
	}
	c.drafts = append(c.drafts, record)
	return nil
}

// Update replaces the entry at index.
func (c *ContactSetup) Update(index int, record model.ContactRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.drafts) {
		return model.NewUserError(model.ErrValidation, "Contact not found.", model.ErrNotFound)
	}
	c.drafts[index] = record
	return nil
}

// Remove deletes the entry at index.
func (c *ContactSetup) Remove(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.drafts) {
		return model.NewUserError(model.ErrValidation, "Contact not found.", model.ErrNotFound)
	}
	c.drafts = append(c.drafts[:index], c.drafts[index+1:]...)
	return nil
}

// ImportCandidates loads address book entries that carry a phone number.
func (c *ContactSetup) ImportCandidates(ctx context.Context) ([]model.DeviceContact, error) {
	if c.contacts == nil {
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to import contacts. Please try again.", nil)
	}

	status, err := c.contacts.RequestPermission(ctx)
	if err != nil {
		c.logger.Error("Contact setup: contacts permission request failed", "error", err.Error())
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to import contacts. Please try again.", err)
	}
	if status != model.PermissionGranted {
		c.notify(ctx, "Permission Denied", "Please grant contacts permission to import contacts.")
		return nil, model.NewUserError(model.ErrPermissionDenied, "Please grant contacts permission to import contacts.", nil)
	}

	all, err := c.contacts.GetContacts(ctx, []model.ContactField{model.ContactFieldPhoneNumbers, model.ContactFieldName})
	if err != nil {
		c.logger.Error("Contact setup: failed to read contacts", "error", err.Error())
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to import contacts. Please try again.", err)
	}

	var candidates []model.DeviceContact
	for _, dc := range all {
		if len(dc.PhoneNumbers) == 0 || dc.PhoneNumbers[0] == "" {
			continue
		}
		candidates = append(candidates, dc)
		if len(candidates) == maxImportCandidates {
			break
		}
	}
	if len(candidates) == 0 {
		c.notify(ctx, "No Contacts", "No contacts found on your device.")
		return nil, model.NewUserError(model.ErrOperationFailed, "No contacts found on your device.", model.ErrNotFound)
	}

	c.logger.Debug("Contact setup: import candidates loaded", "count", len(candidates))
	return candidates, nil
}

// Import adds a device contact using its first phone number.
func (c *ContactSetup) Import(contact model.DeviceContact) error {
	if len(contact.PhoneNumbers) == 0 || contact.PhoneNumbers[0] == "" {
		return model.NewUserError(model.ErrValidation, "The selected contact has no phone number.", nil)
	}
	return c.append(model.ContactRecord{Name: contact.Name, Phone: contact.PhoneNumbers[0]})
}

// Save validates the entries and stores the filled-in ones on the profile.
func (c *ContactSetup) Save(ctx context.Context) error {
	drafts := c.Contacts()
	if err := validate.Contacts(drafts); err != nil {
		return err
	}

	saved := make([]model.ContactRecord, 0, len(drafts))
	for _, d := range drafts {
		if d.Populated() {
			saved = append(saved, d)
		}
	}

	if err := c.session.UpdateUserProfile(ctx, model.ProfileUpdate{EmergencyContacts: &saved}); err != nil {
		c.logger.Error("Contact setup: failed to save contacts", "error", err.Error())
		if errors.Is(err, model.ErrNoActiveSession) {
			return err
		}
		return model.NewUserError(model.ErrPersistence, "Failed to save contacts. Please try again.", err)
	}

	c.logger.Info("Contact setup: contacts saved", "count", len(saved))
	return nil
}

func (c *ContactSetup) notify(ctx context.Context, title, message string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, model.Notice{Title: title, Message: message})
}
