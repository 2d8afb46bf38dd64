// Package settings holds the user's work settings: limits, pay and toggles.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/worktime/internal/timer"
)

// Keys under which settings are stored.
const (
	KeyWorkSeconds         = "work_seconds"
	KeyMaxOvertimeSeconds  = "max_overtime_seconds"
	KeyLoggingOvertime     = "logging_overtime"
	KeyGrossPayPerMonth    = "gross_pay_per_month"
	KeySendingNotification = "sending_notification"
	KeyCalculatingNetPay   = "calculating_net_pay"
	KeyNetPayDeduction     = "net_pay_deduction"
	KeyWeekStart           = "week_start"
)

var ErrInvalidSetting = errors.New("invalid setting")

type Settings struct {
	WorkSeconds         int64
	MaxOvertimeSeconds  int64
	LoggingOvertime     bool
	GrossPayPerMonth    float64
	SendingNotification bool
	CalculatingNetPay   bool
	NetPayDeduction     float64 // fraction of gross withheld, in [0, 1)
	WeekStart           time.Weekday
}

func Defaults() Settings {
	return Settings{
		WorkSeconds:         8 * 3600,
		MaxOvertimeSeconds:  2 * 3600,
		LoggingOvertime:     true,
		SendingNotification: true,
		NetPayDeduction:     0.3,
		WeekStart:           time.Monday,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.WorkSeconds <= 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidSetting, KeyWorkSeconds)
	case s.WorkSeconds > 24*3600:
		return fmt.Errorf("%w: %s exceeds a day", ErrInvalidSetting, KeyWorkSeconds)
	case s.MaxOvertimeSeconds < 0:
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidSetting, KeyMaxOvertimeSeconds)
	case s.GrossPayPerMonth < 0:
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidSetting, KeyGrossPayPerMonth)
	case s.NetPayDeduction < 0 || s.NetPayDeduction >= 1:
		return fmt.Errorf("%w: %s must be in [0, 1)", ErrInvalidSetting, KeyNetPayDeduction)
	case s.WeekStart < time.Sunday || s.WeekStart > time.Saturday:
		return fmt.Errorf("%w: %s", ErrInvalidSetting, KeyWeekStart)
	}
	return nil
}

// TimerConfiguration is the configuration a new session is built with.
func (s Settings) TimerConfiguration() timer.Configuration {
	return timer.Configuration{
		Work:            time.Duration(s.WorkSeconds) * time.Second,
		LoggingOvertime: s.LoggingOvertime,
		Overtime:        time.Duration(s.MaxOvertimeSeconds) * time.Second,
	}
}

// encode returns the stored form of every key.
func (s Settings) encode() map[string]string {
	return map[string]string{
		KeyWorkSeconds:         strconv.FormatInt(s.WorkSeconds, 10),
		KeyMaxOvertimeSeconds:  strconv.FormatInt(s.MaxOvertimeSeconds, 10),
		KeyLoggingOvertime:     strconv.FormatBool(s.LoggingOvertime),
		KeyGrossPayPerMonth:    strconv.FormatFloat(s.GrossPayPerMonth, 'f', -1, 64),
		KeySendingNotification: strconv.FormatBool(s.SendingNotification),
		KeyCalculatingNetPay:   strconv.FormatBool(s.CalculatingNetPay),
		KeyNetPayDeduction:     strconv.FormatFloat(s.NetPayDeduction, 'f', -1, 64),
		KeyWeekStart:           strings.ToLower(s.WeekStart.String()),
	}
}

// decode overlays stored values on the defaults. Unknown keys are ignored.
func decode(values map[string]string) (Settings, error) {
	s := Defaults()
	var err error
	for k, v := range values {
		switch k {
		case KeyWorkSeconds:
			s.WorkSeconds, err = strconv.ParseInt(v, 10, 64)
		case KeyMaxOvertimeSeconds:
			s.MaxOvertimeSeconds, err = strconv.ParseInt(v, 10, 64)
		case KeyLoggingOvertime:
			s.LoggingOvertime, err = strconv.ParseBool(v)
		case KeyGrossPayPerMonth:
			s.GrossPayPerMonth, err = strconv.ParseFloat(v, 64)
		case KeySendingNotification:
			s.SendingNotification, err = strconv.ParseBool(v)
		case KeyCalculatingNetPay:
			s.CalculatingNetPay, err = strconv.ParseBool(v)
		case KeyNetPayDeduction:
			s.NetPayDeduction, err = strconv.ParseFloat(v, 64)
		case KeyWeekStart:
			s.WeekStart, err = ParseWeekday(v)
		}
		if err != nil {
			return Settings{}, fmt.Errorf("%w: %s=%q: %v", ErrInvalidSetting, k, v, err)
		}
	}
	return s, nil
}

// ParseWeekday accepts English weekday names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
