package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medhq/hospital-api/config"
	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/pkg/metrics"
)

// Service delivers appointment notifications. Callers treat delivery
// failures as non-fatal.
type Service interface {
	SendBookingConfirmation(detail *model.AppointmentDetail) error
	SendStatusChange(detail *model.AppointmentDetail) error
}

type smtpService struct {
	cfg     config.SMTPConfig
	metrics *metrics.Metrics
}

// NewService returns an SMTP-backed sender, or a no-op sender when no
// SMTP host is configured.
func NewService(cfg config.SMTPConfig, m *metrics.Metrics) Service {
	if cfg.Host == "" {
		return &noopService{}
	}
	return &smtpService{cfg: cfg, metrics: m}
}

func (s *smtpService) SendBookingConfirmation(detail *model.AppointmentDetail) error {
	subject := "Appointment request received"
	body := fmt.Sprintf(
		"Dear %s %s,\r\n\r\nYour appointment request with Dr. %s %s (%s) on %s at %s has been received and is pending confirmation.\r\n\r\nReason: %s\r\n",
		detail.PatientName, detail.PatientSurname,
		detail.DoctorName, detail.DoctorSurname, detail.DoctorSpecialization,
		detail.Date.Format(model.DateLayout), detail.Time,
		detail.Reason,
	)
	return s.send(detail.PatientEmail, subject, body)
}

func (s *smtpService) SendStatusChange(detail *model.AppointmentDetail) error {
	subject := fmt.Sprintf("Appointment %s", detail.Status)
	body := fmt.Sprintf(
		"Dear %s %s,\r\n\r\nYour appointment with Dr. %s %s on %s at %s is now %s.\r\n",
		detail.PatientName, detail.PatientSurname,
		detail.DoctorName, detail.DoctorSurname,
		detail.Date.Format(model.DateLayout), detail.Time,
		detail.Status,
	)
	return s.send(detail.PatientEmail, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationsFailed.Inc()
		}
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	if s.metrics != nil {
		s.metrics.NotificationsSent.Inc()
	}
	return nil
}

type noopService struct{}

func (*noopService) SendBookingConfirmation(*model.AppointmentDetail) error { return nil }
func (*noopService) SendStatusChange(*model.AppointmentDetail) error        { return nil }
