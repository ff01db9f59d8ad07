package models

import "encoding/json"

// FieldAliases lists, per canonical field, the legacy column spellings to try
// in priority order, plus the keywords used to pick source tables.
type FieldAliases struct {
	User          UserAliases    `json:"user"`
	Request       RequestAliases `json:"request"`
	UserTables    []string       `json:"userTables"`
	RequestTables []string       `json:"requestTables"`
}

type UserAliases struct {
	Login []string `json:"login"`
	Name  []string `json:"name"`
	Email []string `json:"email"`
	Area  []string `json:"area"`
	Title []string `json:"title"`
}

type RequestAliases struct {
	Title       []string `json:"title"`
	Description []string `json:"description"`
	Requester   []string `json:"requester"`
	Area        []string `json:"area"`
}

// DefaultFieldAliases returns the built-in candidate lists.
func DefaultFieldAliases() FieldAliases {
	return FieldAliases{
		User: UserAliases{
			Login: []string{"login", "user", "usuario", "id"},
			Name:  []string{"nome", "name", "usuario", "login"},
			Email: []string{"email", "mail", "e_mail"},
			Area:  []string{"area", "department", "dept", "setor"},
			Title: []string{"cargo", "position", "funcao", "job"},
		},
		Request: RequestAliases{
			Title:       []string{"titulo", "title", "assunto", "descricao"},
			Description: []string{"descricao", "description", "detalhes", "observacao"},
			Requester:   []string{"solicitante", "usuario", "user", "criado_por"},
			Area:        []string{"area", "department", "setor"},
		},
		UserTables:    []string{"user", "usuario", "colaborador", "people", "pessoa"},
		RequestTables: []string{"solicit", "request", "pedido", "ticket"},
	}
}

// Merge returns a copy of a where every non-empty list in o replaces the
// corresponding list of a.
func (a FieldAliases) Merge(o FieldAliases) FieldAliases {
	pick := func(base, override []string) []string {
		if len(override) > 0 {
			return override
		}
		return base
	}
	return FieldAliases{
		User: UserAliases{
			Login: pick(a.User.Login, o.User.Login),
			Name:  pick(a.User.Name, o.User.Name),
			Email: pick(a.User.Email, o.User.Email),
			Area:  pick(a.User.Area, o.User.Area),
			Title: pick(a.User.Title, o.User.Title),
		},
		Request: RequestAliases{
			Title:       pick(a.Request.Title, o.Request.Title),
			Description: pick(a.Request.Description, o.Request.Description),
			Requester:   pick(a.Request.Requester, o.Request.Requester),
			Area:        pick(a.Request.Area, o.Request.Area),
		},
		UserTables:    pick(a.UserTables, o.UserTables),
		RequestTables: pick(a.RequestTables, o.RequestTables),
	}
}

// LoadFieldAliases parses an alias override document.
func LoadFieldAliases(data []byte) (*FieldAliases, error) {
	var m FieldAliases
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
