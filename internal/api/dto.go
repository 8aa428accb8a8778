package api

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/scopedev/scopepad/internal/core"
	"github.com/scopedev/scopepad/internal/store"
)

// Session is embedded in every authenticated response body. When the
// caller's token is close to expiry the replacement is spliced in here;
// otherwise the field is omitted from the JSON entirely.
type Session struct {
	AccessToken string `json:"access_token,omitempty"`
}

func (s *Session) setAccessToken(token string) { s.AccessToken = token }

// tokenCarrier marks response bodies that can carry a refreshed token.
// Only JSON objects embedding Session qualify, which keeps the refresh away
// from arrays and scalar bodies.
type tokenCarrier interface {
	setAccessToken(string)
}

// LogResponse is the generic message body: acks and every error response.
type LogResponse struct {
	Session
	Log string `json:"log"`
}

// Requests

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Password, validation.Required),
	)
}

type NewUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r NewUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 128)),
	)
}

type NewFileRequest struct {
	Title string `json:"title"`
	Code  string `json:"code"`
}

func (r NewFileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 103)),
	)
}

type UpdateFileRequest struct {
	Code string `json:"code"`
}

type NewTargetRequest struct {
	Name string `json:"name"`
}

func (r NewTargetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
	)
}

type SendMessageRequest struct {
	Text  string `json:"text"`
	Name  string `json:"name"`
	Code  bool   `json:"code"`
	Title string `json:"title"`
}

func (r SendMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Title, validation.Length(0, 103)),
	)
}

// RunRequest carries a client-parsed program for the interpreter. Kind is
// "ok" when parsing succeeded; otherwise Message holds the parse error.
type RunRequest struct {
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
	Value   json.RawMessage `json:"value"`
}

// Responses

type LoginResponse struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

// FileView is the wire shape of a file: the source column rides as "code".
type FileView struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Code  string `json:"code"`
}

func newFileView(f store.File) FileView {
	return FileView{ID: f.ID, Title: f.Title, Code: f.SourceCode}
}

type FileResponse struct {
	Session
	File *FileView `json:"file"`
}

type FileListResponse struct {
	Session
	Files []FileView `json:"files"`
}

type MessageView struct {
	Sent  bool   `json:"sent"`
	Code  bool   `json:"code"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type TargetView struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Messages []MessageView `json:"messages"`
}

func newTargetView(d core.TargetDetail) TargetView {
	messages := make([]MessageView, 0, len(d.Messages))
	for _, m := range d.Messages {
		messages = append(messages, MessageView{Sent: m.Sent, Code: m.Code, Title: m.Title, Text: m.Text})
	}
	return TargetView{ID: d.Target.ID, Name: d.Target.Name, Messages: messages}
}

type TargetResponse struct {
	Session
	Target *TargetView `json:"target"`
}

type TargetListResponse struct {
	Session
	Targets []TargetView `json:"targets"`
}

type RunResponse struct {
	Session
	Kind   string `json:"kind"`
	Output string `json:"output"`
}
