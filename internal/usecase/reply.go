package usecase

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/mo"

	"business-recommender/internal/domain"
)

const (
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

	invalidRequestMessage = "Sorry, we couldn't read your request. Text the kind of business you're looking for, for example: pizza"
	failureMessage        = "Sorry, something went wrong. Please try again later."
)

// twimlResponse is the messaging reply envelope expected by Twilio.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// FormatReply renders the chosen business, or a "no match" message naming
// term when nothing was chosen.
func FormatReply(selection mo.Option[domain.BusinessRecord], term string) string {
	record, ok := selection.Get()
	if !ok {
		return renderMessage(fmt.Sprintf("Sorry, no matching business found for %s.", term))
	}
	return renderMessage(fmt.Sprintf(
		"Name: %s\nRating: %s\nLocation: %s\nPhone: %s",
		record.Name,
		formatRating(record.Rating),
		record.Location.Street(),
		record.Phone,
	))
}

// formatRating prints the shortest exact form of r, keeping one decimal for
// whole numbers ("4.0", "4.5", "4.25").
func formatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FailureReply renders the reply sent when a request could not be served.
func FailureReply(err error) string {
	var ucErr *Error
	if errors.As(err, &ucErr) && ucErr.Code == ErrorInvalidInput {
		return renderMessage(invalidRequestMessage)
	}
	return renderMessage(failureMessage)
}

func renderMessage(message string) string {
	body, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		return xmlDeclaration + "<Response><Message>" + failureMessage + "</Message></Response>"
	}
	return xmlDeclaration + string(body)
}
