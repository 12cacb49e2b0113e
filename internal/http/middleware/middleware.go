// middleware — сквозные обработчики публичного API web3-hub:
// recover, request id, логирование, лимит по IP и дедлайн запроса.
package middleware

import (
	"net/http"
)

// Middleware — обёртка над http.Handler; совместима с chi.Router.Use.
type Middleware func(http.Handler) http.Handler

// Chain оборачивает h так, что mws[0] оказывается внешним.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// responseMeter запоминает код ответа и число записанных байт тела.
type responseMeter struct {
	http.ResponseWriter
	code    int
	written int
}

func meter(w http.ResponseWriter) *responseMeter {
	return &responseMeter{ResponseWriter: w}
}

func (m *responseMeter) WriteHeader(code int) {
	if m.code == 0 {
		m.code = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *responseMeter) Write(p []byte) (int, error) {
	if m.code == 0 {
		m.code = http.StatusOK
	}

	n, err := m.ResponseWriter.Write(p)
	m.written += n
	return n, err
}

// Unwrap отдаёт исходный writer для http.ResponseController.
func (m *responseMeter) Unwrap() http.ResponseWriter { return m.ResponseWriter }

// Status — код ответа; обработчик, который ничего не записал, отвечает 200.
func (m *responseMeter) Status() int {
	if m.code == 0 {
		return http.StatusOK
	}
	return m.code
}
