package phone

import (
	"strings"

	"agentdesk/contexts/identity-access/agent-directory/ports"

	"github.com/nyaruka/phonenumbers"
)

// Validator accepts numbers that parse and validate against libphonenumber metadata.
// Numbers without a leading + are resolved against DefaultRegion; an empty region
// requires international format.
type Validator struct {
	DefaultRegion string
}

func (v Validator) Valid(mobile string) bool {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return false
	}
	number, err := phonenumbers.Parse(mobile, strings.ToUpper(v.DefaultRegion))
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(number)
}

var _ ports.PhoneValidator = Validator{}
