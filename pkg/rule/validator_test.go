package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/filevault/pkg/rule"
)

// renameRequest 用于测试 ValidateStruct.
type renameRequest struct {
	Name string `rule:"required,safename"`
	Size int64  `rule:"gte=0"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	valid := renameRequest{Name: "report.pdf", Size: 1024}

	err := rule.ValidateStruct(valid)
	if err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 缺少 Name
	missing := renameRequest{Name: "", Size: 1024}

	err = rule.ValidateStruct(missing)
	if err == nil {
		t.Error("Expected error for missing name, got nil")
	}

	// 负的 Size
	negative := renameRequest{Name: "a.txt", Size: -1}

	err = rule.ValidateStruct(negative)
	if err == nil {
		t.Error("Expected error for negative size, got nil")
	}
}

// TestSafeName 测试文件名校验规则.
func TestSafeName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"report.pdf", true},
		{"年度总结.docx", true},
		{"no extension", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b.txt", false},
		{"a\\b.txt", false},
		{"nul\x00byte", false},
	}

	for _, tt := range tests {
		if got := rule.SafeName(tt.name); got != tt.ok {
			t.Errorf("SafeName(%q) = %v, want %v", tt.name, got, tt.ok)
		}
	}

	// 通过 validator tag 走同一条规则
	if err := rule.ValidateVar("ok.txt", "safename"); err != nil {
		t.Errorf("Expected no error for safe name via tag, got %v", err)
	}

	if err := rule.ValidateVar("../escape", "safename"); err == nil {
		t.Error("Expected error for unsafe name via tag, got nil")
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	err := rule.ValidateVar(25, "gte=18")
	if err != nil {
		t.Errorf("Expected no error for valid number, got %v", err)
	}

	err = rule.ValidateVar(15, "gte=18")
	if err == nil {
		t.Error("Expected error for invalid number, got nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("even_length", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(str)%2 == 0
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	err = rule.ValidateVar("test", "even_length")
	if err != nil {
		t.Errorf("Expected no error for even length string, got %v", err)
	}

	err = rule.ValidateVar("test1", "even_length")
	if err == nil {
		t.Error("Expected error for odd length string, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("folder_name", "required,safename,max=255")

	err := rule.ValidateVar("Reports", "folder_name")
	if err != nil {
		t.Errorf("Expected no error for valid folder name, got %v", err)
	}

	err = rule.ValidateVar("a/b", "folder_name")
	if err == nil {
		t.Error("Expected error for invalid folder name, got nil")
	}
}
