package relevance

// DefaultKeywords is the in-domain vocabulary, already normalized. Single-word
// entries of at least keyword.MinFuzzyLength runes also take part in
// typo-tolerant matching.
var DefaultKeywords = []string{
	// clinics
	"klinik", "klinikler", "kliniği", "kilinik", "klnik", "hastane", "hastanesi", "dental", "poliklinik", "tıp merkezi",
	// proposals
	"teklif", "teklifler", "teklifi", "teklıf", "proposal",
	// visits
	"ziyaret", "ziyaretler", "ziyeret", "ziyarat",
	// surgeries
	"ameliyat", "ameliyatlar", "ameliat", "operasyon", "cerrahi", "rapor", "raporlar",
	// products
	"ürün", "ürünler", "urun", "urunler", "katalog", "fiyat", "fiyatı",
	// campaigns
	"kampanya", "kampanyalar", "kanpanya", "indirim",
	// users and team
	"kullanıcı", "kullanıcılar", "kullanici", "ekip", "ekibim", "personel", "temsilci", "temsilciler", "çalışan",
	// regions and stock
	"bölge", "bölgesi", "bolge", "bölgeler", "stok", "stoklar",
	// business
	"müşteri", "satış", "ciro", "tutar",
	// statuses
	"onaylanan", "onaylı", "bekleyen", "reddedilen", "taslak", "iptal", "gönderilen",
	"aktif", "pasif", "inaktif", "planlanan", "tamamlanan",
	// actions
	"listele", "listesi", "göster", "goster", "getir",
	// time
	"bugün", "bu hafta", "geçen hafta", "bu ay", "geçen ay", "bu yıl", "geçen yıl",
	// help
	"yardım", "neler yapabilirsin", "ne yapabilirsin", "nasıl kullanılır",
}

// fillerWords never take part in typo matching. Short function words sit
// within two edits of four-rune keywords ("bir" and "ciro", "çok" and "stok").
var fillerWords = map[string]struct{}{
	"bir": {}, "bu": {}, "şu": {}, "o": {}, "ve": {}, "veya": {}, "ile": {}, "için": {},
	"gibi": {}, "kadar": {}, "ama": {}, "var": {}, "yok": {}, "çok": {}, "az": {},
	"kim": {}, "ne": {}, "mi": {}, "mı": {}, "mu": {}, "mü": {}, "misin": {}, "mısın": {},
	"musun": {}, "müsün": {}, "nedir": {}, "her": {}, "hiç": {}, "daha": {}, "en": {},
	"de": {}, "da": {}, "ki": {}, "gün": {}, "ben": {}, "sen": {}, "biz": {}, "siz": {},
}

// greetingWords are tokens that make up a pure greeting or small talk.
var greetingWords = map[string]struct{}{
	"merhaba": {}, "merhabalar": {}, "mrb": {}, "selam": {}, "selamlar": {}, "slm": {},
	"hey": {}, "günaydın": {}, "iyi": {}, "günler": {}, "akşamlar": {}, "geceler": {},
	"nasılsın": {}, "nasılsınız": {}, "naber": {}, "teşekkürler": {}, "teşekkür": {},
	"ederim": {}, "sağol": {}, "sağolun": {}, "tamam": {}, "görüşürüz": {}, "hoşçakal": {},
	"hello": {}, "hi": {},
}

// greetingOpeners start a greeting even when followed by other small talk.
var greetingOpeners = []string{"merhaba", "selam", "günaydın", "iyi günler", "iyi akşamlar", "hey", "mrb", "slm", "hello", "hi"}
