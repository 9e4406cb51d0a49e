package ckan

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// typeKey is the discriminator CKAN adds to every error object. It is not a
// field and never becomes a FieldError.
const typeKey = "__type"

// ActionError is a failed action that carried no field errors.
type ActionError struct {
	Action  string
	Status  int
	Type    string
	Message string
}

func (e *ActionError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Type != "" {
		return fmt.Sprintf("%s: %s (%d): %s", e.Action, e.Type, e.Status, msg)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Action, e.Status, msg)
}

// Unwrap maps the portal's error classes onto the domain sentinels.
func (e *ActionError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound || e.Type == "Not Found Error":
		return model.ErrNotFound
	case e.Status == http.StatusForbidden || e.Type == "Authorization Error":
		return model.ErrNotAuthorized
	default:
		return nil
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}

// decodeEnvelope unwraps {"success": ..., "result": ..., "error": ...}.
func decodeEnvelope(action string, status int, data []byte) (json.RawMessage, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ActionError{Action: action, Status: status, Message: "response is not JSON"}
	}

	doc := gjson.ParseBytes(data)
	if doc.Get("success").Bool() && status < http.StatusBadRequest {
		return json.RawMessage(doc.Get("result").Raw), nil
	}

	errObj := doc.Get("error")
	if fields := fieldErrors(errObj, status); len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}

	return nil, &ActionError{
		Action:  action,
		Status:  status,
		Type:    errObj.Get(typeKey).String(),
		Message: errObj.Get("message").String(),
	}
}

// fieldErrors reads the error map in document order. A field's value may be a
// list of messages or a single string; the first message is kept.
func fieldErrors(errObj gjson.Result, status int) []model.FieldError {
	if !errObj.IsObject() {
		return nil
	}

	// Not Found and Authorization errors carry only a "message".
	switch errObj.Get(typeKey).String() {
	case "Validation Error":
	case "":
		if status != http.StatusConflict {
			return nil
		}
	default:
		return nil
	}

	var fields []model.FieldError
	errObj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if name == typeKey {
			return true
		}
		fields = append(fields, model.FieldError{Field: name, Message: firstMessage(value)})
		return true
	})
	return fields
}

func firstMessage(value gjson.Result) string {
	switch {
	case value.IsArray():
		for _, item := range value.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				return s
			}
		}
		return ""
	case value.IsObject():
		return value.Raw
	default:
		return strings.TrimSpace(value.String())
	}
}
