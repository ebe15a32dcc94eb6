package ipalloc

import (
	"fmt"
	"math/big"
	"net/netip"

	"github.com/hansthienpondt/nipam/pkg/table"
	"github.com/henderiw/rangeset/pkg/alloctable"
	"github.com/henderiw/rangeset/pkg/rangeset"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
)

type IPAlloc interface {
	Get(addr string) (table.Route, error)
	Claim(addr string, d table.Route) error
	ClaimRange(ipRange string, d table.Route) error
	Release(addr string) error
	Update(addr string, d table.Route) error

	Count() int
	Has(addr string) bool

	IsFree(addr string) bool
	FindFree() (netip.Addr, error)

	UsedRanges() []netipx.IPRange
	FreeRanges() []netipx.IPRange

	GetAll() table.Routes
	GetByLabel(selector labels.Selector) table.Routes
}

func New(from, to netip.Addr) (IPAlloc, error) {
	ipRange := netipx.IPRangeFrom(from, to)
	if !ipRange.IsValid() {
		return nil, fmt.Errorf("invalid ip range from %s to %s", from, to)
	}
	diff := new(big.Int).Sub(ipToInt(to), ipToInt(from))
	if !diff.IsInt64() {
		return nil, fmt.Errorf("ip range from %s to %s is too large", from, to)
	}
	t, err := alloctable.New[table.Route](
		rangeset.RangeFrom[int64](0, diff.Int64()), nil, nil,
	)
	if err != nil {
		return nil, err
	}
	return &ipAlloc{
		table:   t,
		ipRange: ipRange,
	}, nil
}

type ipAlloc struct {
	table   alloctable.Table[table.Route]
	ipRange netipx.IPRange
}

func (r *ipAlloc) Get(addr string) (table.Route, error) {
	var route table.Route
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return route, err
	}
	return r.table.Get(offsetOf(claimIP, r.ipRange.From()))
}

func (r *ipAlloc) Claim(addr string, d table.Route) error {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	id := offsetOf(claimIP, r.ipRange.From())
	if !r.table.IsFree(id) {
		return fmt.Errorf("claim failed ip %s already claimed", addr)
	}
	return r.table.Claim(id, d)
}

func (r *ipAlloc) ClaimRange(ipRange string, d table.Route) error {
	claimRange, err := netipx.ParseIPRange(ipRange)
	if err != nil {
		return fmt.Errorf("ip range %s is invalid", ipRange)
	}
	if !r.ipRange.Contains(claimRange.From()) || !r.ipRange.Contains(claimRange.To()) {
		return fmt.Errorf("ip range %s, does not fit in the range from %s to %s", ipRange, r.ipRange.From(), r.ipRange.To())
	}
	from := offsetOf(claimRange.From(), r.ipRange.From())
	to := offsetOf(claimRange.To(), r.ipRange.From())
	return r.table.ClaimRange(rangeset.RangeFrom(from, to).String(), d)
}

func (r *ipAlloc) Release(addr string) error {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	return r.table.Release(offsetOf(claimIP, r.ipRange.From()))
}

func (r *ipAlloc) Update(addr string, d table.Route) error {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	id := offsetOf(claimIP, r.ipRange.From())
	if r.table.IsFree(id) {
		return fmt.Errorf("update failed ip %s not claimed", addr)
	}
	return r.table.Update(id, d)
}

func (r *ipAlloc) Count() int {
	return r.table.Count()
}

func (r *ipAlloc) Has(addr string) bool {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return false
	}
	return r.table.Has(offsetOf(claimIP, r.ipRange.From()))
}

func (r *ipAlloc) IsFree(addr string) bool {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return false
	}
	return r.table.IsFree(offsetOf(claimIP, r.ipRange.From()))
}

func (r *ipAlloc) FindFree() (netip.Addr, error) {
	var addr netip.Addr

	id, err := r.table.FindFree()
	if err != nil {
		return addr, err
	}
	return addrAt(r.ipRange.From(), id), nil
}

func (r *ipAlloc) UsedRanges() []netipx.IPRange {
	return r.toIPRanges(r.table.UsedRanges())
}

func (r *ipAlloc) FreeRanges() []netipx.IPRange {
	return r.toIPRanges(r.table.FreeRanges())
}

func (r *ipAlloc) toIPRanges(set rangeset.RangeSet[int64]) []netipx.IPRange {
	if len(set) == 0 {
		return nil
	}
	ranges := make([]netipx.IPRange, 0, len(set))
	for _, rng := range set {
		ranges = append(ranges, netipx.IPRangeFrom(
			addrAt(r.ipRange.From(), rng.From()),
			addrAt(r.ipRange.From(), rng.To()),
		))
	}
	return ranges
}

func (r *ipAlloc) GetAll() table.Routes {
	var routes table.Routes

	iter := r.table.Iterate()

	for iter.Next() {
		routes = append(routes, iter.Value())
	}
	return routes
}

func (r *ipAlloc) GetByLabel(selector labels.Selector) table.Routes {
	var routes table.Routes

	iter := r.table.Iterate()

	for iter.Next() {
		route := iter.Value()
		if selector.Matches(route.Labels()) {
			routes = append(routes, route)
		}
	}

	return routes
}

func (r *ipAlloc) validateIP(addr string) (netip.Addr, error) {
	// Parse IP address
	claimIP, err := netip.ParseAddr(addr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("ip address %s is invalid", addr)
	}
	if !r.ipRange.Contains(claimIP) {
		return netip.Addr{}, fmt.Errorf("ip address %s, does not fit in the range from %s to %s", addr, r.ipRange.From().String(), r.ipRange.To().String())
	}
	return claimIP, nil
}

// offsetOf returns the position of ip relative to start.
func offsetOf(ip, start netip.Addr) int64 {
	return new(big.Int).Sub(ipToInt(ip), ipToInt(start)).Int64()
}

func ipToInt(ip netip.Addr) *big.Int {
	bytes := ip.As16()
	return new(big.Int).SetBytes(bytes[:])
}

// addrAt returns the address at offset relative to start, in the
// address family of start.
func addrAt(start netip.Addr, offset int64) netip.Addr {
	ipInt := new(big.Int).Add(ipToInt(start), big.NewInt(offset))
	ipBytes := ipInt.Bytes()

	if len(ipBytes) < 16 {
		// Pad the byte slice with leading zeros to get to 16 bytes.
		paddedBytes := make([]byte, 16-len(ipBytes))
		ipBytes = append(paddedBytes, ipBytes...)
	}

	var ip16 [16]byte
	copy(ip16[:], ipBytes)

	if start.Is4() {
		return netip.AddrFrom4(netip.AddrFrom16(ip16).As4())
	}
	return netip.AddrFrom16(ip16)
}
