package request

import (
	"errors"
	"strings"
)

var ErrIPRequired = errors.New("IP address required")

type BlockIPRequest struct {
	IP     string `json:"ip" form:"ip"`
	Reason string `json:"reason,omitempty" form:"reason"`
}

func (r *BlockIPRequest) Validate() error {
	// Form values alias the request buffer.
	r.IP = strings.Clone(strings.TrimSpace(r.IP))
	r.Reason = strings.Clone(strings.TrimSpace(r.Reason))
	if r.IP == "" {
		return ErrIPRequired
	}
	return nil
}

type UnblockIPRequest struct {
	IP string `json:"ip" form:"ip"`
}

func (r *UnblockIPRequest) Validate() error {
	r.IP = strings.Clone(strings.TrimSpace(r.IP))
	if r.IP == "" {
		return ErrIPRequired
	}
	return nil
}
