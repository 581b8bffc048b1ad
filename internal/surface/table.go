package surface

import (
	"errors"
	"fmt"
	"sort"
)

// Table is one surface's vocabulary for one resource.
type Table struct {
	Resource string
	// Fields maps canonical name to external name.
	Fields map[string]string
	// Hidden lists canonical fields the surface does not expose.
	Hidden []string
	// Aliases maps extra accepted inbound external names to canonical names.
	Aliases map[string]string
	// Dropped lists external inbound fields that are accepted and discarded.
	Dropped []string
}

// identity maps every field of the named resource to itself.
func identity(resource string, except map[string]string) Table {
	t := Table{Resource: resource, Fields: map[string]string{}}
	for _, r := range Resources {
		if r.Name != resource {
			continue
		}
		for _, f := range r.Fields {
			if ext, ok := except[f]; ok {
				t.Fields[f] = ext
				continue
			}
			t.Fields[f] = f
		}
	}
	return t
}

// MobileTables is the versioned mobile API. It uses the canonical names,
// except that login takes "email".
func MobileTables() []Table {
	login := identity(ResLogin, map[string]string{"identifier": "email"})
	return []Table{
		login,
		identity(ResUser, nil),
		identity(ResProfile, nil),
		identity(ResReport, nil),
		identity(ResVerification, nil),
		identity(ResToken, nil),
		identity(ResChannel, nil),
		identity(ResStatus, nil),
		identity(ResRole, nil),
	}
}

// LegacyTables is the Indonesian-language web dashboard API.
func LegacyTables() []Table {
	return []Table{
		{
			Resource: ResLogin,
			Fields:   map[string]string{"identifier": "username", "password": "password"},
			Aliases:  map[string]string{"email": "identifier"},
		},
		{
			Resource: ResUser,
			Fields: map[string]string{
				"id":            "id",
				"email":         "email",
				"name":          "nama",
				"role":          "role",
				"phone":         "no_handphone",
				"organization":  "organisasi",
				"birth_place":   "tempat_lahir",
				"member_number": "no_anggota",
				"is_active":     "status_aktif",
				"last_login_at": "terakhir_login",
			},
		},
		{
			Resource: ResProfile,
			Fields: map[string]string{
				"name":          "nama",
				"phone":         "no_handphone",
				"organization":  "organisasi",
				"birth_place":   "tempat_lahir",
				"member_number": "no_anggota",
			},
		},
		{
			Resource: ResReport,
			Fields: map[string]string{
				"id":              "id",
				"title":           "judul_laporan",
				"disaster_type":   "jenis_bencana",
				"description":     "deskripsi",
				"location_name":   "lokasi",
				"latitude":        "latitude",
				"longitude":       "longitude",
				"severity":        "tingkat_keparahan",
				"incident_at":     "tanggal_kejadian",
				"personnel_count": "jumlah_personel",
				"contact_phone":   "no_handphone",
				"team_name":       "nama_team_pelapor",
			},
			// uploads go through the file service, not this gateway
			Dropped: []string{"foto_lokasi", "foto_bukti", "foto_pendukung"},
		},
		{
			Resource: ResVerification,
			Fields:   map[string]string{"status": "status_verifikasi", "notes": "catatan"},
		},
		{
			Resource: ResChannel,
			Fields:   map[string]string{"channel_name": "channel_name"},
		},
	}
}

// compiled is a validated table with the reverse index built.
type compiled struct {
	Table
	res     Resource
	inbound map[string]string // external (incl. aliases) -> canonical
	dropped map[string]bool
	hidden  map[string]bool
}

func compile(t Table) (*compiled, error) {
	var res Resource
	found := false
	for _, r := range Resources {
		if r.Name == t.Resource {
			res, found = r, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown resource %q", t.Resource)
	}

	c := &compiled{
		Table:   t,
		res:     res,
		inbound: map[string]string{},
		dropped: map[string]bool{},
		hidden:  map[string]bool{},
	}
	var errs []error
	for _, h := range t.Hidden {
		if !res.has(h) {
			errs = append(errs, fmt.Errorf("%s: hidden field %q is not canonical", t.Resource, h))
		}
		c.hidden[h] = true
	}
	for _, f := range res.Fields {
		ext, mapped := t.Fields[f]
		switch {
		case mapped && c.hidden[f]:
			errs = append(errs, fmt.Errorf("%s: field %q is both mapped and hidden", t.Resource, f))
		case !mapped && !c.hidden[f]:
			errs = append(errs, fmt.Errorf("%s: canonical field %q has no external name", t.Resource, f))
		case mapped && ext == "":
			errs = append(errs, fmt.Errorf("%s: canonical field %q maps to an empty name", t.Resource, f))
		}
	}
	for _, f := range res.Required {
		if c.hidden[f] {
			errs = append(errs, fmt.Errorf("%s: required field %q is hidden", t.Resource, f))
		}
	}
	for canon, ext := range t.Fields {
		if !res.has(canon) {
			errs = append(errs, fmt.Errorf("%s: %q is not a canonical field", t.Resource, canon))
			continue
		}
		if prev, dup := c.inbound[ext]; dup {
			errs = append(errs, fmt.Errorf("%s: external name %q used for %q and %q", t.Resource, ext, prev, canon))
			continue
		}
		c.inbound[ext] = canon
	}
	for alias, canon := range t.Aliases {
		if !res.has(canon) {
			errs = append(errs, fmt.Errorf("%s: alias %q targets unknown field %q", t.Resource, alias, canon))
			continue
		}
		if _, dup := c.inbound[alias]; dup {
			errs = append(errs, fmt.Errorf("%s: alias %q collides with an external name", t.Resource, alias))
			continue
		}
		c.inbound[alias] = canon
	}
	for _, d := range t.Dropped {
		if _, dup := c.inbound[d]; dup {
			errs = append(errs, fmt.Errorf("%s: dropped field %q is also mapped", t.Resource, d))
		}
		c.dropped[d] = true
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// primary reports whether ext is the primary (non-alias) name of canon.
func (c *compiled) primary(ext, canon string) bool {
	return c.Fields[canon] == ext
}
