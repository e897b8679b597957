package service

import "fmt"

func activationEmailTemplate(name, activationURL, appName string) (string, string) {
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Activate your %s account", appName)
	body := fmt.Sprintf(`Hi %s,

Thanks for registering. Click this link to activate your account:
%s

Your account stays inactive until you confirm it. The link stops working
once your account is active.

If you didn't register, you can safely ignore this email.

Best,
The %s Team`, name, activationURL, appName)

	return subject, body
}

func passwordResetEmailTemplate(name, resetURL, appName string) (string, string) {
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`Hi %s,

You requested to reset your password. Set a new one here:
%s

If you didn't request this, you can safely ignore this email. Your password
won't be changed.

Best,
The %s Team`, name, resetURL, appName)

	return subject, body
}

func contactEmailTemplate(fromName, fromEmail, message, appName string) (string, string) {
	subject := fmt.Sprintf("[%s contact] %s", appName, fromName)
	body := fmt.Sprintf(`From: %s <%s>

%s`, fromName, fromEmail, message)

	return subject, body
}
