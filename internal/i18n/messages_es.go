package i18n

var messagesES = map[string]string{
	"message.success":          "operación exitosa",
	"message.registered":       "usuario creado con éxito",
	"message.login_code_sent":  "se envió un código de verificación a tu correo",
	"message.login_success":    "login exitoso",
	"message.recovery_ack":     "si el correo pertenece a una cuenta, se envió un código de recuperación",
	"message.code_verified":    "código verificado, ya puedes elegir una nueva contraseña",
	"message.password_changed": "contraseña actualizada",
	"message.profile_updated":  "perfil actualizado",

	"error.bad_request":                   "solicitud inválida",
	"error.validation_failed":             "errores de validación: %s",
	"error.internal":                      "error interno del servidor",
	"error.not_found":                     "recurso no encontrado",
	"error.unauthorized":                  "se requiere autenticación",
	"error.forbidden":                     "este token no puede usarse aquí",
	"error.auth_header_missing":           "falta el encabezado Authorization",
	"error.auth_header_invalid":           "el encabezado Authorization debe ser un token Bearer",
	"error.invalid_credentials":           "correo o contraseña incorrectos",
	"error.no_pending_code":               "no hay un código pendiente, solicita uno nuevo",
	"error.code_expired":                  "el código ha expirado, solicita uno nuevo",
	"error.code_mismatch":                 "el código no es correcto",
	"error.token_invalid":                 "token inválido",
	"error.token_expired":                 "el token ha expirado",
	"error.token_wrong_purpose":           "este token no fue emitido para este paso",
	"error.reset_token_stale":             "este enlace de recuperación ya fue utilizado",
	"error.account_not_found":             "usuario no encontrado",
	"error.email_in_use":                  "el correo ya está registrado",
	"error.email_invalid":                 "el formato de correo no es el esperado",
	"error.password_weak":                 "la contraseña no cumple la política",
	"error.password_min_length":           "la contraseña debe tener al menos %d caracteres",
	"error.password_max_length":           "la contraseña debe tener como máximo %d bytes",
	"error.password_require_upper":        "la contraseña debe contener una mayúscula",
	"error.password_require_lower":        "la contraseña debe contener una minúscula",
	"error.password_require_number":       "la contraseña debe contener un número",
	"error.password_require_special":      "la contraseña debe contener un carácter especial",
	"error.password_confirm_mismatch":     "las contraseñas no coinciden",
	"error.email_delivery_failed":         "no se pudo enviar el correo, inténtalo de nuevo",
	"error.email_service_not_configured":  "el envío de correos no está configurado",
	"error.rate_limited":                  "demasiadas solicitudes, reintenta en %d segundos",
	"error.rate_limit_unavailable":        "el control de solicitudes no está disponible",
	"error.captcha_required":              "el captcha es obligatorio",
	"error.captcha_invalid":               "el captcha no es correcto",
	"error.captcha_unavailable":           "el captcha no está habilitado",
	"error.register_failed":               "no se pudo registrar el usuario",
	"error.login_failed":                  "no se pudo iniciar sesión",
	"error.recovery_failed":               "no se pudo recuperar la cuenta",
	"error.profile_load_failed":           "no se pudo cargar el perfil",
	"error.profile_update_failed":         "no se pudo actualizar el perfil",
	"error.login_history_failed":          "no se pudo cargar el historial de accesos",

	"validation.required":    "el campo %s es obligatorio",
	"validation.email":       "el campo %s debe ser un correo válido, e.j: example@example.com",
	"validation.min":         "el campo %s debe tener al menos %s caracteres",
	"validation.max":         "el campo %s no debe contener más de %s caracteres",
	"validation.len":         "el campo %s debe tener exactamente %s caracteres",
	"validation.numeric":     "el campo %s solo admite dígitos",
	"validation.eqfield":     "el campo %s debe coincidir con %s",
	"validation.displayname": "el campo %s contiene caracteres no permitidos, evite usar símbolos como < > / \\ & %% $",
	"validation.invalid":     "el campo %s no es válido",
}
