package models

// MemberOrderStatus is a group participant's standing for one delivery day.
type MemberOrderStatus string

const (
	MemberOrderStatusEmpty      MemberOrderStatus = "empty"
	MemberOrderStatusJoined     MemberOrderStatus = "joined"
	MemberOrderStatusNotJoined  MemberOrderStatus = "not_joined"
	MemberOrderStatusExpired    MemberOrderStatus = "expired"
	MemberOrderStatusNotAllowed MemberOrderStatus = "not_allowed"
)

// MemberOrder is one participant's selection for one day of a group
// order. A participant only counts toward demand when Joined reports
// true; use JoinedMemberOrder to build the joined variant so FoodID
// and Status cannot drift apart.
type MemberOrder struct {
	Status      MemberOrderStatus `json:"status"`
	FoodID      string            `json:"food_id,omitempty"`
	Requirement string            `json:"requirement,omitempty"`
}

// JoinedMemberOrder builds a joined selection. An empty foodID yields
// the empty variant instead, so a "joined" record always carries a food.
func JoinedMemberOrder(foodID, requirement string) MemberOrder {
	if foodID == "" {
		return MemberOrder{Status: MemberOrderStatusEmpty}
	}
	return MemberOrder{Status: MemberOrderStatusJoined, FoodID: foodID, Requirement: requirement}
}

// Joined reports whether this selection counts toward the day's demand.
func (m MemberOrder) Joined() bool {
	return m.Status == MemberOrderStatusJoined && m.FoodID != ""
}

// FoodItem is one dish offered by a restaurant for a day.
type FoodItem struct {
	FoodName  string  `json:"food_name"`
	FoodPrice float64 `json:"food_price"`
}

// Restaurant is the partner serving one delivery day. MinQuantity and
// MaxQuantity are nil when the partner has not configured a bound;
// the picking validator applies the defaults.
type Restaurant struct {
	ID          string              `json:"id"`
	FoodList    map[string]FoodItem `json:"food_list"`
	MinQuantity *int                `json:"min_quantity,omitempty"`
	MaxQuantity *int                `json:"max_quantity,omitempty"`
}

// LineItem is one line of a normal (non-group) order for a day.
// Quantity zero means an unset quantity and is counted as one.
type LineItem struct {
	FoodID   string `json:"food_id"`
	Quantity int    `json:"quantity"`
}

// DayRecord is the per-delivery-day slice of a plan: the chosen
// restaurant, the selections, and the fulfillment transaction
// reference. LastTransition caches the transaction's last known
// workflow label for aggregation.
type DayRecord struct {
	Restaurant     Restaurant             `json:"restaurant"`
	LineItems      []LineItem             `json:"line_items,omitempty"`
	MemberOrders   map[string]MemberOrder `json:"member_orders,omitempty"`
	TransactionID  string                 `json:"transaction_id,omitempty"`
	LastTransition string                 `json:"last_transition,omitempty"`
}

// AttendanceKey is the identity a scanned attendance code resolves to.
type AttendanceKey struct {
	PlanID   string `json:"plan_id"`
	MemberID string `json:"member_id"`
	Day      string `json:"day"`
}

// Plan is one ordering cycle of an order, keyed day by day. OrderDetail
// keys are delivery-day timestamps; a day record is mutated in place
// but never removed once created. BarcodeHashMap is the only place the
// code-to-identity binding lives and is rebuilt whole whenever scan
// mode is switched on.
type Plan struct {
	ID             string                   `json:"id"`
	OrderID        string                   `json:"order_id"`
	OrderDetail    map[string]*DayRecord    `json:"order_detail"`
	AllowToScan    bool                     `json:"allow_to_scan"`
	BarcodeHashMap map[string]AttendanceKey `json:"barcode_hash_map,omitempty"`
	Version        int64                    `json:"-"`
}
