package model

// ProfileUpdate is a partial identity update. A nil field is left untouched;
// a pointer to a zero value clears the field.
type ProfileUpdate struct {
	Name              *string
	Email             *string
	Gender            *string
	DateOfBirth       *string
	Division          *string
	Designation       *string
	BadgeNumber       *string
	Phone             *string
	Address           *string
	Area              *string
	EmergencyContacts *[]ContactRecord
	VoiceEnrolled     *bool
}

// Empty reports whether the update sets no field.
func (p ProfileUpdate) Empty() bool {
	return p == ProfileUpdate{}
}

// Merge returns u with every set field of p applied.
func (u UserIdentity) Merge(p ProfileUpdate) UserIdentity {
	mergeString(&u.Name, p.Name)
	mergeString(&u.Email, p.Email)
	mergeString(&u.Gender, p.Gender)
	mergeString(&u.DateOfBirth, p.DateOfBirth)
	mergeString(&u.Division, p.Division)
	mergeString(&u.Designation, p.Designation)
	mergeString(&u.BadgeNumber, p.BadgeNumber)
	mergeString(&u.Phone, p.Phone)
	mergeString(&u.Address, p.Address)
	mergeString(&u.Area, p.Area)

	if p.EmergencyContacts != nil {
		if *p.EmergencyContacts == nil {
			u.EmergencyContacts = nil
		} else {
			u.EmergencyContacts = append([]ContactRecord{}, (*p.EmergencyContacts)...)
		}
	} else if u.EmergencyContacts != nil {
		u.EmergencyContacts = append([]ContactRecord{}, u.EmergencyContacts...)
	}

	if p.VoiceEnrolled != nil {
		u.VoiceEnrolled = *p.VoiceEnrolled
	}

	return u
}

func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
