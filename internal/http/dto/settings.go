package dto

import (
	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/domain"
)

type UpdateSettingsRequest struct {
	WelcomeMessage  *string `json:"welcomeMessage"`
	SubtitleMessage *string `json:"subtitleMessage"`
	Background      *string `json:"background"`
	SessionID       string  `json:"sessionId"`
}

func (r *UpdateSettingsRequest) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRequired("sessionId", r.SessionID)...)
	errs = append(errs, validateOptionalMaxLength("welcomeMessage", r.WelcomeMessage, constants.MaxSettingLength)...)
	errs = append(errs, validateOptionalMaxLength("subtitleMessage", r.SubtitleMessage, constants.MaxSettingLength)...)
	errs = append(errs, validateOptionalMaxLength("background", r.Background, constants.MaxSettingLength)...)
	errs = append(errs, validateBackground(r.Background)...)
	return errs
}

// ToUpdate converts the request. Empty strings count as omitted.
func (r *UpdateSettingsRequest) ToUpdate() domain.SettingsUpdate {
	return domain.SettingsUpdate{
		WelcomeMessage:  nonEmpty(r.WelcomeMessage),
		SubtitleMessage: nonEmpty(r.SubtitleMessage),
		Background:      nonEmpty(r.Background),
	}
}

func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
