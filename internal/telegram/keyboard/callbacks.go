package keyboard

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Callback actions
const (
	ActionOption   = "opt"     // opt:<question ref>:<option index>
	ActionToggle   = "tgl"     // tgl:<question ref>:<option index>
	ActionSlider   = "sl"      // sl:<question ref>:<delta>
	ActionSubmit   = "done"    // done:<question ref>
	ActionHelp     = "help"    // help:<question ref>
	ActionDownload = "dl"      // dl:<format>
	ActionConfirm  = "confirm" // confirm:cancel | confirm:continue
	ActionStart    = "action"  // action:start
)

// Telegram rejects callback data longer than this
const maxCallbackBytes = 64

// Question ids up to this length without ':' or '#' go into callback data as is
const maxPlainQuestionRef = 32

// QuestionRef is the form of a question id used in callback data. Short
// plain ids are kept readable; anything else becomes '#' and an FNV-64a
// hash of the id, which never contains ':' and always fits the limit.
func QuestionRef(questionID string) string {
	if questionID != "" && len(questionID) <= maxPlainQuestionRef && !strings.ContainsAny(questionID, ":#") {
		return questionID
	}

	h := fnv.New64a()
	h.Write([]byte(questionID))
	return "#" + strconv.FormatUint(h.Sum64(), 36)
}

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string
	Value  string
}

// Question splits a question-scoped value into the question ref and the
// remaining argument.
func (c *CallbackData) Question() (questionRef, arg string) {
	questionRef, arg, _ = strings.Cut(c.Value, ":")
	return questionRef, arg
}

// IsFor reports whether a question-scoped callback was built for questionID
func (c *CallbackData) IsFor(questionID string) bool {
	ref, _ := c.Question()
	return ref == QuestionRef(questionID)
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	action, value, ok := strings.Cut(data, ":")
	if !ok || action == "" {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{
		Action: action,
		Value:  value,
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action string, args ...string) string {
	return action + ":" + strings.Join(args, ":")
}
