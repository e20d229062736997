package client

import (
	"github.com/pkg/errors"

	"github.com/mindloom/insightserver/responses"
)

type serverResponse struct {
	Reply interface{} `json:"reply"`
}

// unmarshalReply unwraps a {"reply": ...} service response into response,
// surfacing remote error replies as errors.
func unmarshalReply(data []byte, response interface{}) error {
	var errProbe struct {
		Reply *responses.Error `json:"reply"`
	}
	if err := json.Unmarshal(data, &errProbe); err == nil && errProbe.Reply != nil && errProbe.Reply.Code != 0 {
		return *errProbe.Reply
	}
	if err := json.Unmarshal(data, &serverResponse{Reply: response}); err != nil {
		return errors.Wrapf(err, "could not unmarshal response %q", string(data))
	}
	return nil
}
