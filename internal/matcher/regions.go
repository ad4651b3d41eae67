package matcher

import (
	"sort"
	"sync"

	"github.com/hyperjump/asistan/pkg/utils"
)

// RegionMap translates province names to named sales regions.
type RegionMap struct {
	mu        sync.RWMutex
	provinces map[string]string
	order     []string
}

// NewRegionMap builds a lookup from a province → region name map.
func NewRegionMap(provinces map[string]string) *RegionMap {
	rm := &RegionMap{}
	rm.Replace(provinces)
	return rm
}

// Replace swaps the lookup table. Keys and values are normalized.
func (rm *RegionMap) Replace(provinces map[string]string) {
	normalized := make(map[string]string, len(provinces))
	for province, region := range provinces {
		p := utils.Normalize(province)
		r := utils.Normalize(region)
		if p == "" || r == "" {
			continue
		}
		normalized[p] = r
	}

	// Longer province names first so "kahramanmaraş" is not shadowed by a shorter prefix.
	order := make([]string, 0, len(normalized))
	for p := range normalized {
		order = append(order, p)
	}
	sort.Slice(order, func(i, j int) bool {
		if len(order[i]) != len(order[j]) {
			return len(order[i]) > len(order[j])
		}
		return order[i] < order[j]
	})

	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.provinces = normalized
	rm.order = order
}

// Lookup returns the normalized region name for the first province that
// starts a token of the normalized message.
func (rm *RegionMap) Lookup(message string) (string, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	for _, p := range rm.order {
		if utils.HasTokenPrefix(message, p) {
			return rm.provinces[p], true
		}
	}
	return "", false
}

// Len returns the number of provinces in the map.
func (rm *RegionMap) Len() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.provinces)
}

// DefaultProvinces returns the built-in province → region table.
func DefaultProvinces() map[string]string {
	table := map[string][]string{
		"Marmara Bölgesi":           {"istanbul", "bursa", "kocaeli", "sakarya", "tekirdağ", "edirne", "kırklareli", "balıkesir", "çanakkale", "yalova", "bilecik"},
		"Ege Bölgesi":               {"izmir", "manisa", "aydın", "denizli", "muğla", "uşak", "kütahya", "afyon"},
		"İç Anadolu Bölgesi":        {"ankara", "konya", "kayseri", "eskişehir", "sivas", "aksaray", "niğde", "nevşehir", "kırıkkale", "yozgat", "karaman"},
		"Akdeniz Bölgesi":           {"antalya", "adana", "mersin", "hatay", "ısparta", "burdur", "osmaniye", "kahramanmaraş"},
		"Karadeniz Bölgesi":         {"samsun", "trabzon", "ordu", "rize", "giresun", "zonguldak", "kastamonu", "sinop", "amasya", "tokat"},
		"Doğu Anadolu Bölgesi":      {"erzurum", "van", "malatya", "elazığ", "erzincan", "kars", "ağrı"},
		"Güneydoğu Anadolu Bölgesi": {"gaziantep", "diyarbakır", "şanlıurfa", "mardin", "batman", "adıyaman", "siirt"},
	}
	out := make(map[string]string)
	for region, provinces := range table {
		for _, p := range provinces {
			out[p] = region
		}
	}
	return out
}
