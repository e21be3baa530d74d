package lead

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
)

// FieldKind tags how an editable field is entered and stored.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
)

// Field describes one editable attribute of CreateLeadPayload.
type Field struct {
	Name  string
	Label string
	Kind  FieldKind
}

// Fields lists the editable attributes in display order. Value and Set switch
// over exactly these names.
var Fields = []Field{
	{Name: "full_name", Label: "Full name", Kind: KindText},
	{Name: "position", Label: "Position", Kind: KindText},
	{Name: "company", Label: "Company", Kind: KindText},
	{Name: "location", Label: "Location", Kind: KindText},
	{Name: "profile_url", Label: "Profile URL", Kind: KindText},
	{Name: "followers", Label: "Followers", Kind: KindNumber},
	{Name: "connections", Label: "Connections", Kind: KindNumber},
	{Name: "education", Label: "Education", Kind: KindText},
	{Name: "personal_message", Label: "Personal message", Kind: KindText},
	{Name: "message_length", Label: "Message length", Kind: KindNumber},
	{Name: "generated_at", Label: "Generated at", Kind: KindText},
	{Name: "total_leads", Label: "Total leads", Kind: KindNumber},
}

// FieldByName looks up a field descriptor.
func FieldByName(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// PayloadFrom copies the writable attributes of l into a create payload.
func PayloadFrom(l Lead) CreateLeadPayload {
	var p CreateLeadPayload
	// copier only fails on nil, non-pointer or kind-mismatched arguments;
	// both sides here are struct pointers whose shared fields have equal types.
	_ = copier.Copy(&p, &l)
	return p
}

// Value renders the named field as text.
func (p *CreateLeadPayload) Value(name string) (string, error) {
	switch name {
	case "full_name":
		return p.FullName, nil
	case "position":
		return p.Position, nil
	case "company":
		return p.Company, nil
	case "location":
		return p.Location, nil
	case "profile_url":
		return p.ProfileURL, nil
	case "followers":
		return strconv.FormatInt(p.Followers, 10), nil
	case "connections":
		return strconv.FormatInt(p.Connections, 10), nil
	case "education":
		return p.Education, nil
	case "personal_message":
		return p.PersonalMessage, nil
	case "message_length":
		return strconv.FormatInt(p.MessageLength, 10), nil
	case "generated_at":
		return p.GeneratedAt, nil
	case "total_leads":
		return strconv.FormatInt(p.TotalLeads, 10), nil
	}
	return "", fmt.Errorf("lead: unknown field %q", name)
}

// Set assigns the named field from its text form. Number fields accept only
// non-negative integers; an empty value stores zero.
func (p *CreateLeadPayload) Set(name, value string) error {
	field, ok := FieldByName(name)
	if !ok {
		return fmt.Errorf("lead: unknown field %q", name)
	}
	var n int64
	if field.Kind == KindNumber {
		parsed, err := parseCount(value)
		if err != nil {
			return fmt.Errorf("lead: %s: %w", name, err)
		}
		n = parsed
	}
	switch name {
	case "full_name":
		p.FullName = value
	case "position":
		p.Position = value
	case "company":
		p.Company = value
	case "location":
		p.Location = value
	case "profile_url":
		p.ProfileURL = value
	case "followers":
		p.Followers = n
	case "connections":
		p.Connections = n
	case "education":
		p.Education = value
	case "personal_message":
		p.PersonalMessage = value
	case "message_length":
		p.MessageLength = n
	case "generated_at":
		p.GeneratedAt = value
	case "total_leads":
		p.TotalLeads = n
	}
	return nil
}

func parseCount(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}
