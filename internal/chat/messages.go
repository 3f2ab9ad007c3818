package chat

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
)

const (
	msgCityNotRecognized = "Maaf, saya tidak dapat mengenali nama kota dari pertanyaan Anda."
	msgAssistantBusy     = "Maaf, layanan AI sedang sibuk atau tidak tersedia sementara. Silakan coba beberapa saat lagi."
	msgEmptyReply        = "Maaf, saya tidak bisa menghasilkan jawaban saat ini. Silakan coba lagi."
	msgWeatherKeyMissing = "API key cuaca belum dikonfigurasi"
)

var errCityNotRecognized = errors.New(msgCityNotRecognized)

// WeatherFailure phrases a weather lookup failure for the end user.
func WeatherFailure(city string, err error) string {
	if apperr.IsConfig(err) {
		return msgWeatherKeyMissing
	}

	var upstream *apperr.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Status {
		case http.StatusNotFound:
			return fmt.Sprintf("Kota \"%s\" tidak ditemukan", city)
		case http.StatusUnauthorized:
			return "API key cuaca tidak valid: " + apperr.Details(err)
		}
	}
	return "Gagal mendapatkan data cuaca: " + apperr.Details(err)
}

// weatherUnavailableNote is appended to the user's message when the weather
// lookup failed, so the assistant can still answer.
func weatherUnavailableNote(message string, reason string) string {
	return fmt.Sprintf("%s. Saya tidak dapat mengambil data cuaca untuk kota tersebut karena: %s. Namun, saya tetap akan mencoba membantu Anda.", message, reason)
}

// FriendlyError turns a pipeline failure into the assistant bubble shown to
// the user. Raw error values never reach the caller.
func FriendlyError(err error) string {
	var parseErr *apperr.ParseError
	if errors.As(err, &parseErr) && parseErr.Field == "text" {
		return msgEmptyReply
	}

	var upstream *apperr.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Status {
		case http.StatusServiceUnavailable, http.StatusTooManyRequests:
			return msgAssistantBusy
		case http.StatusNotFound:
			return fmt.Sprintf("Maaf, %s. Silakan coba nama kota yang lain.", apperr.Details(err))
		}
	}

	return fmt.Sprintf("Maaf, terjadi kesalahan: %s. Silakan coba lagi.", apperr.Details(err))
}
