package output

import (
	"reflect"
	"testing"
	"time"

	"github.com/ccollicutt/wareader/pkg/parser"
)

func TestFormatDay(t *testing.T) {
	now := time.Date(2022, 9, 11, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		date string
		want string
	}{
		{"9/11/2022", "Today"},
		{"9/10/2022", "Yesterday"},
		{"12/25/2021", "December 25, 2021"},
		{"25/12/2021", "25/12/2021"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := FormatDay(tt.date, now); got != tt.want {
				t.Errorf("FormatDay(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestDisplayContent(t *testing.T) {
	tests := []struct {
		name string
		msg  parser.UserMessage
		want string
	}{
		{
			name: "plain unescaped",
			msg:  parser.UserMessage{Content: "Tom &amp; Jerry &lt;3"},
			want: "Tom & Jerry <3",
		},
		{
			name: "media only",
			msg:  parser.UserMessage{Content: "&lt;Media omitted&gt;", IsMedia: true},
			want: MediaLabel,
		},
		{
			name: "media with caption",
			msg:  parser.UserMessage{Content: "look\n&lt;Media omitted&gt;", IsMedia: true},
			want: "look\n" + MediaLabel,
		},
		{
			name: "deleted",
			msg:  parser.UserMessage{Content: "null", IsDeleted: true},
			want: DeletedLabel,
		},
		{
			name: "edited",
			msg:  parser.UserMessage{Content: "fixed &lt;This message was edited&gt;", IsEdited: true},
			want: "fixed " + EditedLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayContent(&tt.msg); got != tt.want {
				t.Errorf("DisplayContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShowSender(t *testing.T) {
	incoming := &parser.UserMessage{Sender: "Bob"}
	outgoing := &parser.UserMessage{Sender: "Alice", Outgoing: true}

	if ShowSender(outgoing, 3, "Alice") {
		t.Error("outgoing messages never show the sender")
	}
	if ShowSender(incoming, 2, "Alice") {
		t.Error("one-to-one chat with a perspective hides the sender")
	}
	if !ShowSender(incoming, 3, "Alice") {
		t.Error("group chat shows the sender")
	}
	if !ShowSender(incoming, 2, "") {
		t.Error("no perspective shows the sender")
	}
}

func TestLinks(t *testing.T) {
	got := Links("see https://example.com/a?b=1 and http://x.org.")
	want := []string{"https://example.com/a?b=1", "http://x.org."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Links() = %v, want %v", got, want)
	}
	if Links("no links here") != nil {
		t.Error("Links() should be nil without URLs")
	}
}
