package client

import (
	"encoding/json"
	"strings"

	"denuncias/internal/dispatch"
	"denuncias/internal/models"
)

func failed(err error) dispatch.Response {
	appErr := models.AsAppError(err)
	return dispatch.Response{Error: appErr.Body(), Status: appErr.Status()}
}

func invalid(format string, args ...any) dispatch.Response {
	return failed(models.NewInvalidRequestError(format, args...))
}

// As converts response data into T. Data produced in-process is returned as
// is; anything else (e.g. decoded JSON) is re-encoded into T.
func As[T any](resp dispatch.Response) (T, error) {
	var zero T
	if resp.Error != nil {
		return zero, &models.AppError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if v, ok := resp.Data.(T); ok {
		return v, nil
	}
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// Exact messages are matched first, then substrings, in this order.
var translations = []struct {
	match, text string
}{
	{"Invalid login credentials", "Credenciales inválidas"},
	{"Email not confirmed", "Email no confirmado. Revisa tu correo."},
	{"already registered", "Este email ya está registrado"},
	{"Password should be at least 6 characters", "La contraseña debe tener al menos 6 caracteres"},
	{"Unable to validate email address: invalid format", "Formato de email inválido"},
	{"Signup requires a valid password", "Se requiere una contraseña válida"},
	{"Invalid email or password", "Email o contraseña incorrectos"},
	{"Token has expired or is invalid", "El token ha expirado"},
	{"Auth session missing", "Debes iniciar sesión para continuar"},
	{"Operation not permitted", "No tienes permisos para realizar esta acción"},
	{"duplicate key value violates unique constraint", "Este registro ya existe"},
	{"new row violates row-level security policy", "No tienes permisos para realizar esta acción"},
	{"Failed to fetch", "Error de conexión. Verifica tu internet."},
	{"Network request failed", "Error de red. Intenta nuevamente."},
}

// TranslateError maps an engine error message to Spanish UI text. Unknown
// messages are returned unchanged.
func TranslateError(message string) string {
	for _, t := range translations {
		if message == t.match {
			return t.text
		}
	}
	for _, t := range translations {
		if strings.Contains(message, t.match) {
			return t.text
		}
	}
	return message
}
