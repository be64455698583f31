/*
 * This file is part of firebot-script-google-cloud-tts (https://github.com/heyaapl/firebot-script-google-cloud-tts).
 * Copyright (C) 2025 heyaapl
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package voices

// Gender is the SSML gender Google reports for a voice.
type Gender string

const (
	GenderFemale  Gender = "FEMALE"
	GenderMale    Gender = "MALE"
	GenderNeutral Gender = "NEUTRAL"
)

// Descriptor describes one selectable voice.
type Descriptor struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   Gender `json:"gender"`
}

// LanguageCode returns the API language parameter for the voice.
func (d Descriptor) LanguageCode() string {
	return GetVoiceLangCode(d.Name)
}

// Category returns the pricing category for the voice.
func (d Descriptor) Category() Category {
	return GetVoiceCategory(d.Name)
}

// GetSupportedVoices returns the display catalog in declaration order. The
// returned slice is a copy and may be modified by the caller.
func GetSupportedVoices() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

var catalog = []Descriptor{
	{Name: "ar-XA-Standard-A", Language: "Arabic", Gender: GenderFemale},
	{Name: "ar-XA-Wavenet-B", Language: "Arabic", Gender: GenderMale},
	{Name: "cmn-CN-Standard-A", Language: "Chinese (Mandarin)", Gender: GenderFemale},
	{Name: "cmn-CN-Wavenet-C", Language: "Chinese (Mandarin)", Gender: GenderMale},
	{Name: "da-DK-Neural2-D", Language: "Danish", Gender: GenderFemale},
	{Name: "de-DE-Chirp3-HD-Charon", Language: "German (Germany)", Gender: GenderMale},
	{Name: "de-DE-Neural2-B", Language: "German (Germany)", Gender: GenderMale},
	{Name: "de-DE-Polyglot-1", Language: "German (Germany)", Gender: GenderMale},
	{Name: "de-DE-Standard-A", Language: "German (Germany)", Gender: GenderFemale},
	{Name: "de-DE-Studio-B", Language: "German (Germany)", Gender: GenderMale},
	{Name: "de-DE-Wavenet-C", Language: "German (Germany)", Gender: GenderFemale},
	{Name: "en-AU-Chirp-HD-D", Language: "English (Australia)", Gender: GenderMale},
	{Name: "en-AU-Neural2-A", Language: "English (Australia)", Gender: GenderFemale},
	{Name: "en-AU-News-E", Language: "English (Australia)", Gender: GenderFemale},
	{Name: "en-AU-Polyglot-1", Language: "English (Australia)", Gender: GenderMale},
	{Name: "en-AU-Standard-B", Language: "English (Australia)", Gender: GenderMale},
	{Name: "en-AU-Wavenet-C", Language: "English (Australia)", Gender: GenderFemale},
	{Name: "en-GB-Chirp3-HD-Aoede", Language: "English (UK)", Gender: GenderFemale},
	{Name: "en-GB-Neural2-B", Language: "English (UK)", Gender: GenderMale},
	{Name: "en-GB-News-G", Language: "English (UK)", Gender: GenderFemale},
	{Name: "en-GB-Standard-A", Language: "English (UK)", Gender: GenderFemale},
	{Name: "en-GB-Studio-B", Language: "English (UK)", Gender: GenderMale},
	{Name: "en-GB-Wavenet-D", Language: "English (UK)", Gender: GenderMale},
	{Name: "en-IN-Chirp3-HD-Puck", Language: "English (India)", Gender: GenderMale},
	{Name: "en-IN-Neural2-A", Language: "English (India)", Gender: GenderFemale},
	{Name: "en-IN-Standard-B", Language: "English (India)", Gender: GenderMale},
	{Name: "en-IN-Wavenet-D", Language: "English (India)", Gender: GenderFemale},
	{Name: "en-US-Casual-K", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Chirp-HD-D", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Chirp-HD-F", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Chirp-HD-O", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Chirp3-HD-Aoede", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Chirp3-HD-Charon", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Chirp3-HD-Fenrir", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Chirp3-HD-Kore", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Chirp3-HD-Leda", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Chirp3-HD-Orus", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Chirp3-HD-Puck", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Chirp3-HD-Zephyr", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Neural2-A", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Neural2-C", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Neural2-D", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Neural2-F", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-News-K", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-News-N", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Polyglot-1", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Standard-A", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Standard-C", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Standard-E", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Standard-I", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Studio-O", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Studio-Q", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Wavenet-A", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Wavenet-B", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Wavenet-C", Language: "English (US)", Gender: GenderFemale},
	{Name: "en-US-Wavenet-D", Language: "English (US)", Gender: GenderMale},
	{Name: "en-US-Wavenet-F", Language: "English (US)", Gender: GenderFemale},
	{Name: "es-ES-Chirp3-HD-Kore", Language: "Spanish (Spain)", Gender: GenderFemale},
	{Name: "es-ES-Neural2-A", Language: "Spanish (Spain)", Gender: GenderFemale},
	{Name: "es-ES-Polyglot-1", Language: "Spanish (Spain)", Gender: GenderMale},
	{Name: "es-ES-Standard-B", Language: "Spanish (Spain)", Gender: GenderMale},
	{Name: "es-US-Neural2-B", Language: "Spanish (US)", Gender: GenderMale},
	{Name: "es-US-News-D", Language: "Spanish (US)", Gender: GenderMale},
	{Name: "es-US-Polyglot-1", Language: "Spanish (US)", Gender: GenderMale},
	{Name: "es-US-Studio-B", Language: "Spanish (US)", Gender: GenderMale},
	{Name: "es-US-Wavenet-A", Language: "Spanish (US)", Gender: GenderFemale},
	{Name: "fr-CA-Neural2-A", Language: "French (Canada)", Gender: GenderFemale},
	{Name: "fr-CA-Standard-B", Language: "French (Canada)", Gender: GenderMale},
	{Name: "fr-FR-Chirp3-HD-Leda", Language: "French (France)", Gender: GenderFemale},
	{Name: "fr-FR-Neural2-B", Language: "French (France)", Gender: GenderMale},
	{Name: "fr-FR-Polyglot-1", Language: "French (France)", Gender: GenderMale},
	{Name: "fr-FR-Studio-A", Language: "French (France)", Gender: GenderFemale},
	{Name: "fr-FR-Wavenet-C", Language: "French (France)", Gender: GenderFemale},
	{Name: "hi-IN-Neural2-A", Language: "Hindi", Gender: GenderFemale},
	{Name: "hi-IN-Wavenet-B", Language: "Hindi", Gender: GenderMale},
	{Name: "it-IT-Neural2-A", Language: "Italian", Gender: GenderFemale},
	{Name: "it-IT-Standard-C", Language: "Italian", Gender: GenderMale},
	{Name: "ja-JP-Chirp3-HD-Aoede", Language: "Japanese", Gender: GenderFemale},
	{Name: "ja-JP-Neural2-B", Language: "Japanese", Gender: GenderFemale},
	{Name: "ja-JP-Standard-C", Language: "Japanese", Gender: GenderMale},
	{Name: "ko-KR-Neural2-A", Language: "Korean", Gender: GenderFemale},
	{Name: "ko-KR-Wavenet-C", Language: "Korean", Gender: GenderMale},
	{Name: "nl-NL-Standard-A", Language: "Dutch", Gender: GenderFemale},
	{Name: "nl-NL-Wavenet-B", Language: "Dutch", Gender: GenderMale},
	{Name: "pl-PL-Standard-B", Language: "Polish", Gender: GenderMale},
	{Name: "pt-BR-Neural2-A", Language: "Portuguese (Brazil)", Gender: GenderFemale},
	{Name: "pt-BR-Standard-B", Language: "Portuguese (Brazil)", Gender: GenderMale},
	{Name: "ru-RU-Standard-A", Language: "Russian", Gender: GenderFemale},
	{Name: "ru-RU-Wavenet-B", Language: "Russian", Gender: GenderMale},
	{Name: "sv-SE-Standard-A", Language: "Swedish", Gender: GenderFemale},
	{Name: "tr-TR-Standard-B", Language: "Turkish", Gender: GenderMale},
	{Name: "uk-UA-Wavenet-A", Language: "Ukrainian", Gender: GenderFemale},
	{Name: "vi-VN-Neural2-A", Language: "Vietnamese", Gender: GenderFemale},
	{Name: "yue-HK-Standard-A", Language: "Chinese (Cantonese)", Gender: GenderFemale},
}
