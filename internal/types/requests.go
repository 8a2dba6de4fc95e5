package types

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Password  string `json:"password" binding:"required,strongpassword"`
}

var (
	updateUserFields    = []string{"firstname", "lastname", "password"}
	updateUserForbidden = []string{"email", "account_created", "account_updated"}
)

// UpdateUserRequest is a partial update of the authenticated user
type UpdateUserRequest struct {
	FirstName *string
	LastName  *string
	Password  *string
}

// ParseUpdateUserRequest decodes and validates a user update payload. Email
// and account timestamps are immutable; an empty payload is rejected.
func ParseUpdateUserRequest(body []byte) (*UpdateUserRequest, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errEmptyBody()
	}

	req := &UpdateUserRequest{}
	ve := newProblems()
	checkKeys(ve, raw, updateUserFields, updateUserForbidden)

	var first, last, password string
	if decodeMember(ve, raw, "firstname", &first) {
		req.FirstName = &first
	}
	if decodeMember(ve, raw, "lastname", &last) {
		req.LastName = &last
	}
	if decodeMember(ve, raw, "password", &password) {
		checkVar(ve, "password", password, "alphanum,min=8,max=30")
		req.Password = &password
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return req, nil
}
