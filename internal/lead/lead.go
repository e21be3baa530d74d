// Package lead defines the lead record exchanged with the leads API and the
// payloads used to create and update it.
package lead

import "time"

// Lead is a scraped contact record owned by exactly one organisation.
// ID, OrganisationID and the timestamps are assigned remotely.
type Lead struct {
	ID              int64     `json:"id"`
	OrganisationID  int64     `json:"organisation_id"`
	FullName        string    `json:"full_name"`
	Position        string    `json:"position"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	ProfileURL      string    `json:"profile_url"`
	Followers       int64     `json:"followers"`
	Connections     int64     `json:"connections"`
	Education       string    `json:"education"`
	PersonalMessage string    `json:"personal_message"`
	MessageLength   int64     `json:"message_length"`
	GeneratedAt     string    `json:"generated_at"`
	TotalLeads      int64     `json:"total_leads"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateLeadPayload carries every writable attribute of a lead. All fields
// are always sent.
type CreateLeadPayload struct {
	FullName        string `json:"full_name"`
	Position        string `json:"position"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	ProfileURL      string `json:"profile_url"`
	Followers       int64  `json:"followers"`
	Connections     int64  `json:"connections"`
	Education       string `json:"education"`
	PersonalMessage string `json:"personal_message"`
	MessageLength   int64  `json:"message_length"`
	GeneratedAt     string `json:"generated_at"`
	TotalLeads      int64  `json:"total_leads"`
}

// UpdatePayload is a partial update: nil fields are left out of the request
// body and keep their remote value.
type UpdatePayload struct {
	FullName        *string `json:"full_name,omitempty"`
	Position        *string `json:"position,omitempty"`
	Company         *string `json:"company,omitempty"`
	Location        *string `json:"location,omitempty"`
	ProfileURL      *string `json:"profile_url,omitempty"`
	Followers       *int64  `json:"followers,omitempty"`
	Connections     *int64  `json:"connections,omitempty"`
	Education       *string `json:"education,omitempty"`
	PersonalMessage *string `json:"personal_message,omitempty"`
	MessageLength   *int64  `json:"message_length,omitempty"`
	GeneratedAt     *string `json:"generated_at,omitempty"`
	TotalLeads      *int64  `json:"total_leads,omitempty"`
}

// AsUpdate converts the payload into an update that sets every field.
func (p CreateLeadPayload) AsUpdate() UpdatePayload {
	return UpdatePayload{
		FullName:        &p.FullName,
		Position:        &p.Position,
		Company:         &p.Company,
		Location:        &p.Location,
		ProfileURL:      &p.ProfileURL,
		Followers:       &p.Followers,
		Connections:     &p.Connections,
		Education:       &p.Education,
		PersonalMessage: &p.PersonalMessage,
		MessageLength:   &p.MessageLength,
		GeneratedAt:     &p.GeneratedAt,
		TotalLeads:      &p.TotalLeads,
	}
}

// IsEmpty reports whether no field is set.
func (u UpdatePayload) IsEmpty() bool {
	return u.FullName == nil && u.Position == nil && u.Company == nil &&
		u.Location == nil && u.ProfileURL == nil && u.Followers == nil &&
		u.Connections == nil && u.Education == nil && u.PersonalMessage == nil &&
		u.MessageLength == nil && u.GeneratedAt == nil && u.TotalLeads == nil
}

// Apply writes the set fields of u onto l. Identity, ownership and
// timestamps are untouched.
func (u UpdatePayload) Apply(l *Lead) {
	if l == nil {
		return
	}
	setString(&l.FullName, u.FullName)
	setString(&l.Position, u.Position)
	setString(&l.Company, u.Company)
	setString(&l.Location, u.Location)
	setString(&l.ProfileURL, u.ProfileURL)
	setInt(&l.Followers, u.Followers)
	setInt(&l.Connections, u.Connections)
	setString(&l.Education, u.Education)
	setString(&l.PersonalMessage, u.PersonalMessage)
	setInt(&l.MessageLength, u.MessageLength)
	setString(&l.GeneratedAt, u.GeneratedAt)
	setInt(&l.TotalLeads, u.TotalLeads)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}
