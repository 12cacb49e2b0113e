// redact маскирует данные, которые не должны попадать в логи целиком:
// адреса кошельков, ключи API и секреты в URL узлов и брокеров.
package redact

import (
	"net/url"
	"strings"
)

// Address сокращает адрес кошелька до префикса и хвоста.
//
// Примеры:
//
//	"0x52908400098527886E0F7030069857D2E4169EE7" -> "0x5290…9EE7"
//	"0xabc"                                      -> "***"
//	""                                           -> ""
func Address(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) < 12 {
		return "***"
	}

	return string(r[:6]) + "…" + string(r[len(r)-4:])
}

// Secret — литерал-заглушка для ключей API.
func Secret() string { return "[REDACTED]" }

// URL убирает пароль из userinfo, значения query-параметров и последний
// сегмент пути, если он похож на ключ (Alchemy/Infura: /v2/<key>).
// Непарсящаяся строка заменяется целиком.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}

	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			q.Set(k, "xxxxx")
		}
		u.RawQuery = q.Encode()
	}

	if i := strings.LastIndexByte(u.Path, '/'); i >= 0 && looksLikeKey(u.Path[i+1:]) {
		u.Path = u.Path[:i+1] + "xxxxx"
		u.RawPath = ""
	}

	return u.String()
}

// looksLikeKey — длинный сегмент из букв, цифр, '-' и '_'.
func looksLikeKey(seg string) bool {
	if len(seg) < 20 {
		return false
	}
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}

	return true
}
