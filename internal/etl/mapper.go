package etl

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BartekS5/legacysync/internal/legacy"
	"github.com/BartekS5/legacysync/pkg/models"
)

// Reasons a legacy row is not turned into a canonical entity.
var (
	ErrMissingLogin     = errors.New("missing login")
	ErrMissingName      = errors.New("missing name")
	ErrMissingTitle     = errors.New("missing title")
	ErrMissingRequester = errors.New("missing requester")
	ErrNoEnvironment    = errors.New("no environment available")
)

const (
	DefaultEmailDomain    = "empresa.com.br"
	defaultUserArea       = "Não informado"
	defaultRequestArea    = "Migração"
	migratedJustification = "Migrado do sistema legado"
)

// Mapper builds canonical entities from legacy rows.
type Mapper struct {
	Aliases     models.FieldAliases
	EmailDomain string

	now   func() time.Time
	newID func() string
}

func NewMapper(aliases models.FieldAliases, emailDomain string) *Mapper {
	if emailDomain == "" {
		emailDomain = DefaultEmailDomain
	}
	return &Mapper{
		Aliases:     aliases,
		EmailDomain: emailDomain,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// MapUser returns ErrMissingLogin or ErrMissingName for rows that cannot
// become a user. A missing email is synthesized from the login.
func (m *Mapper) MapUser(row legacy.Row) (*models.User, error) {
	a := m.Aliases.User
	login, ok := Resolve(row, a.Login...)
	if !ok {
		return nil, ErrMissingLogin
	}
	name, ok := Resolve(row, a.Name...)
	if !ok {
		return nil, ErrMissingName
	}
	email, ok := Resolve(row, a.Email...)
	if !ok {
		email = login + "@" + m.EmailDomain
	}
	area, ok := Resolve(row, a.Area...)
	if !ok {
		area = defaultUserArea
	}
	title, _ := Resolve(row, a.Title...)

	return &models.User{
		Login:      login,
		Name:       name,
		Email:      email,
		Area:       area,
		Title:      title,
		IsAdmin:    false,
		CanApprove: false,
		Active:     true,
		CreatedAt:  m.now(),
		CreatedBy:  models.ActorMigration,
	}, nil
}

// MapRequest links the request to env. A nil env yields ErrNoEnvironment
// once the row itself is mappable.
func (m *Mapper) MapRequest(row legacy.Row, env *models.Environment) (*models.Request, error) {
	a := m.Aliases.Request
	title, ok := Resolve(row, a.Title...)
	if !ok {
		return nil, ErrMissingTitle
	}
	requester, ok := Resolve(row, a.Requester...)
	if !ok {
		return nil, ErrMissingRequester
	}
	if env == nil {
		return nil, ErrNoEnvironment
	}
	description, ok := Resolve(row, a.Description...)
	if !ok {
		description = title
	}
	area, ok := Resolve(row, a.Area...)
	if !ok {
		area = defaultRequestArea
	}

	now := m.now()
	return &models.Request{
		Number:         m.requestNumber(now),
		Title:          title,
		Description:    description,
		Justification:  migratedJustification,
		Classification: models.ClassificationPCT,
		Status:         models.StatusPending,
		Priority:       models.DefaultPriority,
		Requester:      requester,
		RequesterArea:  area,
		EnvironmentID:  env.ID,
		Active:         true,
		CreatedAt:      now,
		CreatedBy:      models.ActorMigration,
	}, nil
}

// requestNumber is LEG-yyyyMMdd-XXXXXXXX. It is a display id, not checked
// for collisions.
func (m *Mapper) requestNumber(now time.Time) string {
	id := strings.ReplaceAll(m.newID(), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "LEG-" + now.Format("20060102") + "-" + strings.ToUpper(id)
}

// IsSkip reports whether err is one of the mapping rejections above.
func IsSkip(err error) bool {
	return errors.Is(err, ErrMissingLogin) || errors.Is(err, ErrMissingName) ||
		errors.Is(err, ErrMissingTitle) || errors.Is(err, ErrMissingRequester) ||
		errors.Is(err, ErrNoEnvironment)
}
