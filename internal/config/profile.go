package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchoolProfile carries the per-school text stamped on reports and fed to triage.
type SchoolProfile struct {
	SchoolName        string `yaml:"school_name"`
	SystemInstruction string `yaml:"system_instruction"`
}

const defaultSchoolName = "PTDTBT THCS THU CÚC"

// DefaultProfile returns the profile used when no YAML file is configured.
func DefaultProfile() *SchoolProfile {
	return &SchoolProfile{
		SchoolName:        defaultSchoolName,
		SystemInstruction: defaultSystemInstruction(defaultSchoolName),
	}
}

// LoadProfile reads a school profile from a YAML file. An empty path yields
// the default profile.
func LoadProfile(path string) (*SchoolProfile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open school profile: %w", err)
	}
	defer file.Close()

	profile := &SchoolProfile{}
	if err := yaml.NewDecoder(file).Decode(profile); err != nil {
		return nil, fmt.Errorf("failed to decode school profile: %w", err)
	}

	profile.SchoolName = strings.TrimSpace(profile.SchoolName)
	if profile.SchoolName == "" {
		profile.SchoolName = defaultSchoolName
	}
	if strings.TrimSpace(profile.SystemInstruction) == "" {
		profile.SystemInstruction = defaultSystemInstruction(profile.SchoolName)
	}

	return profile, nil
}

func defaultSystemInstruction(school string) string {
	return "Bạn là một chuyên gia tư vấn tâm lý và an toàn học đường hỗ trợ TRƯỜNG " + school + ".\n" +
		"Nhiệm vụ của bạn là phân tích báo cáo sự cố từ học sinh để hỗ trợ giáo viên và ban giám hiệu.\n" +
		"Hãy đưa ra phân tích mang tính nhân văn, giáo dục và bảo mật thông tin.\n" +
		"Tránh các từ ngữ quá nhạy cảm nhưng phải phản ánh đúng mức độ nghiêm trọng."
}
