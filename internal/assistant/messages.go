package assistant

// Fixed replies shown to the user when no generated answer can be given.
const (
	InvalidContextMessage = "Gönderilen bağlam bilgisi geçersiz. Lütfen sayfayı yenileyip tekrar deneyin."
	GreetingMessage       = "Merhaba! Size klinikler, teklifler, ziyaretler, ameliyat raporları, ürünler ve kampanyalar hakkında yardımcı olabilirim. Ne öğrenmek istersiniz?"
	RefusalMessage        = "Üzgünüm, yalnızca iş verilerinizle ilgili sorularda yardımcı olabiliyorum. Klinikler, teklifler, ziyaretler, ameliyat raporları, ürünler veya kampanyalar hakkında soru sorabilirsiniz."
	FailureMessage        = "Üzgünüm, şu anda yanıt oluşturulamadı. Lütfen biraz sonra tekrar deneyin."
)
