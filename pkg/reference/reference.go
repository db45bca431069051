package reference

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidReference ...
var ErrInvalidReference = errors.New("invalid correlation reference")

const (
	campaignPrefix = "campaign_"
	ticketsMarker  = "_tickets_"
)

// Encode packs a campaign id and its reserved quota numbers into the
// correlation reference echoed back by payment providers:
//
//	campaign_<campaignId>_tickets_<q1>,<q2>,...
//
// Campaign ids are UUIDs generated by this system and therefore never
// contain underscores. Decode relies on that.
func Encode(campaignID string, quotas []int64) string {
	var b strings.Builder
	b.WriteString(campaignPrefix)
	b.WriteString(campaignID)
	b.WriteString(ticketsMarker)
	for i, q := range quotas {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(q, 10))
	}
	return b.String()
}

// Decode is the inverse of Encode. It fails with ErrInvalidReference when
// the fixed pattern does not match or any quota token is not an integer.
func Decode(ref string) (campaignID string, quotas []int64, err error) {
	if !strings.HasPrefix(ref, campaignPrefix) {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	rest := ref[len(campaignPrefix):]

	index := strings.Index(rest, ticketsMarker)
	if index <= 0 {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}

	campaignID = rest[:index]
	if strings.Contains(campaignID, "_") {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}

	list := rest[index+len(ticketsMarker):]
	if list == "" {
		return "", nil, fmt.Errorf("%w: empty quota list in %q", ErrInvalidReference, ref)
	}

	tokens := strings.Split(list, ",")
	quotas = make([]int64, 0, len(tokens))
	for _, token := range tokens {
		if !isDigits(token) {
			return "", nil, fmt.Errorf("%w: quota %q", ErrInvalidReference, token)
		}
		num, parseErr := strconv.ParseInt(token, 10, 64)
		if parseErr != nil {
			return "", nil, fmt.Errorf("%w: quota %q", ErrInvalidReference, token)
		}
		quotas = append(quotas, num)
	}
	return campaignID, quotas, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
