package surface

// MessageKey identifies a user-facing message.
type MessageKey int

const (
	MsgOK MessageKey = iota
	MsgLoginOK
	MsgLogoutOK
	MsgInvalidCredentials
	MsgUnauthenticated
	MsgForbidden
	MsgValidation
	MsgMalformed
	MsgUnavailable
	MsgRateLimited
	MsgNotFound
	MsgInternal
	MsgProfileUpdated
	MsgReportAccepted
	MsgReportVerified
	MsgUserUpdated
	MsgTokenCreated
	MsgTokenRevoked
)

var messages = map[Surface]map[MessageKey]string{
	Mobile: {
		MsgOK:                 "OK",
		MsgLoginOK:            "Login successful",
		MsgLogoutOK:           "Logout successful",
		MsgInvalidCredentials: "Invalid credentials",
		MsgUnauthenticated:    "Unauthenticated",
		MsgForbidden:          "Forbidden",
		MsgValidation:         "Validation failed",
		MsgMalformed:          "Malformed request body",
		MsgUnavailable:        "Service temporarily unavailable",
		MsgRateLimited:        "Too many requests",
		MsgNotFound:           "Not found",
		MsgInternal:           "Internal server error",
		MsgProfileUpdated:     "Profile updated",
		MsgReportAccepted:     "Report submitted",
		MsgReportVerified:     "Report verification recorded",
		MsgUserUpdated:        "User updated",
		MsgTokenCreated:       "Token created",
		MsgTokenRevoked:       "Token revoked",
	},
	Legacy: {
		MsgOK:                 "Berhasil",
		MsgLoginOK:            "Login berhasil",
		MsgLogoutOK:           "Logout berhasil",
		MsgInvalidCredentials: "Username atau password salah",
		MsgUnauthenticated:    "Tidak terautentikasi",
		MsgForbidden:          "Akses ditolak",
		MsgValidation:         "Validasi gagal",
		MsgMalformed:          "Format permintaan tidak valid",
		MsgUnavailable:        "Layanan sedang tidak tersedia",
		MsgRateLimited:        "Terlalu banyak permintaan",
		MsgNotFound:           "Data tidak ditemukan",
		MsgInternal:           "Terjadi kesalahan pada server",
		MsgProfileUpdated:     "Profil berhasil diperbarui",
		MsgReportAccepted:     "Laporan berhasil dikirim",
		MsgReportVerified:     "Verifikasi laporan tersimpan",
		MsgUserUpdated:        "Pengguna berhasil diperbarui",
		MsgTokenCreated:       "Token dibuat",
		MsgTokenRevoked:       "Token dicabut",
	},
}

// Message returns the text for key on s, falling back to the mobile text.
func Message(s Surface, key MessageKey) string {
	if m, ok := messages[s][key]; ok {
		return m
	}
	return messages[Mobile][key]
}
