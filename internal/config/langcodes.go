package config

import "strings"

// validLangCodes is the set of language codes the upstream toolchain ships
// training data for.
var validLangCodes = func() map[string]struct{} {
	const codes = "afr amh ara asm aze aze_cyrl bel ben bih bod bos bul cat " +
		"ceb ces chi_sim chi_tra chr cym cyr_lid dan deu div dzo " +
		"ell eng enm epo est eus fas fil fin fra frk frm gle glg " +
		"grc guj hat heb hin hrv hun hye iast iku ind isl ita ita_old " +
		"jav jav_java jpn kan kat kat_old kaz khm kir kmr kor kur_ara lao lat " +
		"lat_lid lav lit mal mar mkd mlt msa mya nep nld nor ori " +
		"pan pol por pus ron rus san sin slk slv snd spa spa_old " +
		"sqi srp srp_latn swa swe syr tam tel tgk tgl tha tir tur " +
		"uig ukr urd uzb uzb_cyrl vie yid gle_uncial deu_latf"

	set := make(map[string]struct{})
	for _, code := range strings.Fields(codes) {
		set[code] = struct{}{}
	}
	return set
}()

// ValidLangCode reports whether lang is a known language code.
func ValidLangCode(lang string) bool {
	_, ok := validLangCodes[lang]
	return ok
}
