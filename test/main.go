package main

import (
	"fmt"

	"github.com/hansthienpondt/nipam/pkg/table"
	"github.com/henderiw/rangeset/pkg/alloctable"
	"github.com/henderiw/rangeset/pkg/ipalloc"
	"github.com/henderiw/rangeset/pkg/rangeset"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
)

var values = []int64{-1, -2, 2, 0, 7, 10, -4, 1, 3, 6, -3, 4, 9, 8}

func main() {
	set := rangeset.BuildRanges(append([]int64(nil), values...))
	fmt.Println("ranges", set)

	free, err := set.Complement(rangeset.RangeFrom[int64](-10, 20))
	if err != nil {
		panic(err)
	}
	fmt.Println("complement", free)

	vlans, err := alloctable.New[labels.Set](
		rangeset.RangeFrom[int64](0, 4095),
		map[int64]labels.Set{
			0:    {"status": "reserved"},
			1:    {"status": "reserved"},
			4095: {"status": "reserved"},
		},
		nil,
	)
	if err != nil {
		panic(err)
	}

	if err := vlans.ClaimRange("1000-2000", labels.Set{"range": "test"}); err != nil {
		panic(err)
	}
	id, err := vlans.ClaimDynamic(labels.Set{"a": "b"})
	if err != nil {
		panic(err)
	}
	fmt.Println("claimed", id)
	fmt.Println("used", vlans.UsedRanges())
	fmt.Println("free", vlans.FreeRanges())

	handleId(vlans, 1000)
	handleId(vlans, 100)

	ls, err := GetLabelSelector(map[string]string{"a": "b"})
	if err != nil {
		panic(err)
	}
	iter := vlans.Iterate()
	for iter.Next() {
		if ls.Matches(iter.Value()) {
			fmt.Println("by label", iter.ID(), iter.Value())
		}
	}

	ipRange, err := netipx.ParseIPRange("10.0.0.10-10.0.0.20")
	if err != nil {
		panic(err)
	}
	ips, err := ipalloc.New(ipRange.From(), ipRange.To())
	if err != nil {
		panic(err)
	}
	if err := ips.ClaimRange("10.0.0.12-10.0.0.15", table.Route{}); err != nil {
		panic(err)
	}
	addr, err := ips.FindFree()
	if err != nil {
		panic(err)
	}
	fmt.Println("free addr", addr)
	fmt.Println("used", ips.UsedRanges())
	fmt.Println("free", ips.FreeRanges())
}

func handleId(vt alloctable.Table[labels.Set], id int64) {
	d, err := vt.Get(id)
	if err != nil {
		fmt.Println(err)
		if err := vt.Claim(id, labels.Set{"claimed": "true"}); err != nil {
			fmt.Println(err)
		}
		return
	}
	fmt.Println("entry", id, d)
}

func GetLabelSelector(l map[string]string) (labels.Selector, error) {
	fullselector := labels.NewSelector()
	for k, v := range l {
		req, err := labels.NewRequirement(k, selection.Equals, []string{v})
		if err != nil {
			return nil, err
		}
		fullselector = fullselector.Add(*req)
	}
	return fullselector, nil
}
