package enums

// NoticeKind classifies the confirmation emitted after a cart mutation.
type NoticeKind string

const (
	NoticeKindAdded           NoticeKind = "added"
	NoticeKindQuantityUpdated NoticeKind = "quantity_updated"
	NoticeKindRemoved         NoticeKind = "removed"
)

// String implements fmt.Stringer.
func (n NoticeKind) String() string {
	return string(n)
}
