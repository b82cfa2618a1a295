package room

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/mqy/minichat/store"
)

// Visible reports whether requester may read m.
//
// Any `message` kind is public even when addressed to one participant, while a
// `private_message` is only seen by its sender and recipient. Clients rely on this.
func Visible(m *store.Message, requester string) bool {
	return m.To == store.RoomBroadcast ||
		m.To == requester ||
		m.From == requester ||
		m.Kind == store.KindMessage
}

// FilterVisible keeps the messages visible to requester, in their original order,
// then returns the last `limit` of them. A non-positive limit yields an empty slice.
func FilterVisible(msgs []*store.Message, requester string, limit int) []*store.Message {
	if limit <= 0 {
		return []*store.Message{}
	}
	visible := lo.Filter(msgs, func(m *store.Message, _ int) bool {
		return Visible(m, requester)
	})
	return lo.Subset(visible, -limit, uint(limit))
}

// ParseLimit parses the `limit` query parameter. Absent, non-numeric and negative
// values are not valid.
func ParseLimit(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
