package repository

import (
    "context"
    "database/sql"
    "sort"
    "strings"
    "time"
)

// QueueRepo assembles the booking queue: every active selection joined
// with its option, leg, project, artist, open holds and ticketing
// progress.  Nothing here is persisted; the queue is recomputed on
// every page load.
type QueueRepo struct {
    db *sql.DB
}

// NewQueueRepo returns a new QueueRepo bound to the given database.
func NewQueueRepo(db *sql.DB) *QueueRepo { return &QueueRepo{db: db} }

// QueueItem is one ticketing work item for the booking desk.  A nil
// SoonestHoldExpiry means no open hold backs the selection, which
// sorts after everything with a deadline.
type QueueItem struct {
    SelectionID     uint64     `json:"selection_id"`
    GroupID         uint64     `json:"group_id"`
    GroupLabel      string     `json:"group_label"`
    OptionID        uint64     `json:"option_id"`
    Airline         string     `json:"airline"`
    FlightNumber    string     `json:"flight_number"`
    PriceCents      uint64     `json:"price_cents"`
    Currency        string     `json:"currency"`
    LegID           uint64     `json:"leg_id"`
    LegLabel        string     `json:"leg_label"`
    OriginIATA      string     `json:"origin_iata"`
    DestIATA        string     `json:"dest_iata"`
    ProjectID       uint64     `json:"project_id"`
    ProjectName     string     `json:"project_name"`
    ArtistID        uint64     `json:"artist_id"`
    ArtistName      string     `json:"artist_name"`
    OpenHolds       int        `json:"open_holds"`
    SoonestHoldExpiry *time.Time `json:"soonest_hold_expiry,omitempty"`
    TicketedCount   int        `json:"ticketed_count"`
    TotalPassengers int        `json:"total_passengers"`
    SelectedAt      time.Time  `json:"selected_at"`
}

// ListQueue returns every active selection with full booking context.
// Holds are filtered to non-expired at read time; ticketing progress
// counts group members holding a ticket for the selection's leg.
func (r *QueueRepo) ListQueue(ctx context.Context) ([]QueueItem, error) {
    const q = `SELECT s.id, sg.id, sg.label,
                      o.id, o.airline, o.flight_number, s.price_cents, s.currency,
                      l.id, l.label, l.origin_iata, l.dest_iata,
                      p.id, p.name, a.id, a.name,
                      s.created_at
               FROM selections s
               JOIN selection_groups sg ON sg.id = s.selection_group_id
               JOIN flight_options o ON o.id = s.option_id
               JOIN legs l ON l.id = sg.leg_id
               JOIN projects p ON p.id = l.project_id
               JOIN artists a ON a.id = p.artist_id
               WHERE s.is_active = 1
               ORDER BY s.id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]QueueItem, 0)
    optionIndex := make(map[uint64][]int) // option ID -> item positions
    groupIndex := make(map[uint64][]int)  // group ID -> item positions
    for rows.Next() {
        var it QueueItem
        if err := rows.Scan(&it.SelectionID, &it.GroupID, &it.GroupLabel,
            &it.OptionID, &it.Airline, &it.FlightNumber, &it.PriceCents, &it.Currency,
            &it.LegID, &it.LegLabel, &it.OriginIATA, &it.DestIATA,
            &it.ProjectID, &it.ProjectName, &it.ArtistID, &it.ArtistName,
            &it.SelectedAt); err != nil {
            return nil, err
        }
        optionIndex[it.OptionID] = append(optionIndex[it.OptionID], len(items))
        groupIndex[it.GroupID] = append(groupIndex[it.GroupID], len(items))
        items = append(items, it)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(items) == 0 {
        return items, nil
    }

    // Open holds: count and soonest expiry per option, one query.
    optArgs, optPh := idArgs(optionIndex)
    holdQ := `SELECT option_id, COUNT(*), MIN(expires_at)
              FROM holds
              WHERE expires_at > UTC_TIMESTAMP() AND option_id IN (` + optPh + `)
              GROUP BY option_id`
    hrows, err := r.db.QueryContext(ctx, holdQ, optArgs...)
    if err != nil {
        return nil, err
    }
    defer hrows.Close()
    for hrows.Next() {
        var optID uint64
        var count int
        var soonest time.Time
        if err := hrows.Scan(&optID, &count, &soonest); err != nil {
            return nil, err
        }
        for _, i := range optionIndex[optID] {
            items[i].OpenHolds = count
            exp := soonest
            items[i].SoonestHoldExpiry = &exp
        }
    }
    if err := hrows.Err(); err != nil {
        return nil, err
    }

    // Ticketing progress: members and ticketed members per group.
    grpArgs, grpPh := idArgs(groupIndex)
    tickQ := `SELECT sgp.group_id, COUNT(sgp.passenger_id), COUNT(t.id)
              FROM selection_group_passengers sgp
              JOIN selection_groups sg ON sg.id = sgp.group_id
              LEFT JOIN tickets t ON t.passenger_id = sgp.passenger_id AND t.leg_id = sg.leg_id
              WHERE sgp.group_id IN (` + grpPh + `)
              GROUP BY sgp.group_id`
    trows, err := r.db.QueryContext(ctx, tickQ, grpArgs...)
    if err != nil {
        return nil, err
    }
    defer trows.Close()
    for trows.Next() {
        var gid uint64
        var total, ticketed int
        if err := trows.Scan(&gid, &total, &ticketed); err != nil {
            return nil, err
        }
        for _, i := range groupIndex[gid] {
            items[i].TotalPassengers = total
            items[i].TicketedCount = ticketed
        }
    }
    if err := trows.Err(); err != nil {
        return nil, err
    }

    SortQueueItems(items)
    return items, nil
}

// SortQueueItems orders the queue by urgency: items cluster by
// project then leg, and clusters as well as the items inside them are
// ranked by their soonest open hold expiry.  Selections with no open
// hold sort last within their cluster.  The function is pure and
// sorts in place.
func SortQueueItems(items []QueueItem) {
    projSoonest := make(map[uint64]*time.Time)
    legSoonest := make(map[uint64]*time.Time)
    for i := range items {
        exp := items[i].SoonestHoldExpiry
        if earlier(exp, projSoonest[items[i].ProjectID]) {
            projSoonest[items[i].ProjectID] = exp
        }
        if earlier(exp, legSoonest[items[i].LegID]) {
            legSoonest[items[i].LegID] = exp
        }
    }
    sort.SliceStable(items, func(i, j int) bool {
        a, b := items[i], items[j]
        if a.ProjectID != b.ProjectID {
            if c := compareExpiry(projSoonest[a.ProjectID], projSoonest[b.ProjectID]); c != 0 {
                return c < 0
            }
            return a.ProjectID < b.ProjectID
        }
        if a.LegID != b.LegID {
            if c := compareExpiry(legSoonest[a.LegID], legSoonest[b.LegID]); c != 0 {
                return c < 0
            }
            return a.LegID < b.LegID
        }
        if c := compareExpiry(a.SoonestHoldExpiry, b.SoonestHoldExpiry); c != 0 {
            return c < 0
        }
        return a.SelectionID < b.SelectionID
    })
}

// earlier reports whether a beats the current best b, where nil means
// "no deadline" and loses to any concrete time.
func earlier(a, b *time.Time) bool {
    if a == nil {
        return false
    }
    if b == nil {
        return true
    }
    return a.Before(*b)
}

// compareExpiry orders two optional expiries, nil last.
func compareExpiry(a, b *time.Time) int {
    switch {
    case a == nil && b == nil:
        return 0
    case a == nil:
        return 1
    case b == nil:
        return -1
    case a.Before(*b):
        return -1
    case b.Before(*a):
        return 1
    default:
        return 0
    }
}

// idArgs flattens an index map into IN-clause args and placeholders.
func idArgs(index map[uint64][]int) ([]interface{}, string) {
    args := make([]interface{}, 0, len(index))
    ph := make([]string, 0, len(index))
    for id := range index {
        args = append(args, id)
        ph = append(ph, "?")
    }
    return args, strings.Join(ph, ",")
}
