// Package email envía los correos del flujo de reset de contraseña.
//
//	Auth service ──► Mailer (render html+txt) ──► Sender
//	                                              ├─ SMTPSender (go-mail)
//	                                              └─ LogSender  (dev)
//
// Los templates viven embebidos en templates/.
package email
