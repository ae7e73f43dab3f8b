package probe

import (
	"fmt"
	"math"
	"net/http"
)

const totalTolerance = 1e-9

// verify compares a server reply with the locally computed case.
func verify(tc Case, r reply) error {
	if tc.Invalid() {
		if r.Status != http.StatusUnprocessableEntity {
			return fmt.Errorf("case %d: status %d, want %d", tc.Index, r.Status, http.StatusUnprocessableEntity)
		}
		if r.Code != tc.ErrorKey {
			return fmt.Errorf("case %d: code %q, want %q", tc.Index, r.Code, tc.ErrorKey)
		}
	} else {
		if r.Status != http.StatusOK {
			return fmt.Errorf("case %d: status %d, want %d", tc.Index, r.Status, http.StatusOK)
		}
		if math.Abs(r.Total-tc.Total) > totalTolerance {
			return fmt.Errorf("case %d: total %.4f, want %.4f", tc.Index, r.Total, tc.Total)
		}
	}
	if r.Message != tc.Message {
		return fmt.Errorf("case %d: message %q, want %q", tc.Index, r.Message, tc.Message)
	}
	return nil
}
